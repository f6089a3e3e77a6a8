// Package memimage is an in-process stand-in for a debugger's view of an
// inspected program.
//
// An Image is a flat little-endian address space plus a table of scalar,
// pointer, array, struct, typedef, const and reference types. Values are typed
// locations in the image and implement host.Value; the Image itself
// implements host.Session. The printers cannot tell an Image apart from a live
// debugger binding, which is what makes it useful for the CLI and for tests.
//
// Building a value by hand:
//
//	im := memimage.New()
//	dbl := im.Scalar("double", memimage.Float64)
//	st := im.Struct("Point", nil,
//		memimage.FieldSpec{Name: "x", Type: dbl},
//		memimage.FieldSpec{Name: "y", Type: dbl},
//	)
//	p := im.NewValue(st)
//	_ = im.WriteScalar(p.Address()+8, memimage.Float64, 2.5)
package memimage
