package layout

import (
	"strings"

	"github.com/roach88/eigenview/internal/host"
	"github.com/roach88/eigenview/internal/typedesc"
)

// Owning type markers searched for inside a view's type name.
var owningMarkers = []string{"Eigen::Matrix<", "Eigen::Array<"}

// FieldOuterStride is the runtime outer stride of a map-based view.
const FieldOuterStride = "m_outerStride"

// OwningTypeName extracts the innermost owning matrix type from a view type
// name. For
//
//	Eigen::Block<Eigen::Block<Eigen::Matrix<double, -1, -1, 0, -1, -1>, -1, -1, false> const, -1, -1, false>
//
// it returns "Eigen::Matrix<double, -1, -1, 0, -1, -1>".
func OwningTypeName(viewName string) (string, error) {
	begin := -1
	for _, m := range owningMarkers {
		if i := strings.Index(viewName, m); i >= 0 && (begin < 0 || i < begin) {
			begin = i
		}
	}
	if begin < 0 {
		return "", unrecognizedView(viewName)
	}
	end, ok := typedesc.MatchingClose(viewName, strings.IndexByte(viewName[begin:], '<')+begin)
	if !ok {
		return "", unrecognizedView(viewName)
	}
	return viewName[begin : end+1], nil
}

func unrecognizedView(name string) *typedesc.Error {
	return &typedesc.Error{
		Code:     typedesc.ErrCodeUnrecognizedView,
		Message:  "owning matrix type not found in view type",
		TypeName: name,
	}
}

// BlockFromValue reinterprets a Block or VectorBlock value as its owning
// matrix type and resolves the window's storage.
//
// The view's memory begins with the same data/rows/cols words as a
// dynamic-size owning matrix, so the reinterpreted handle is read through
// the ordinary dense path. The window's own size parameters replace the
// owning type's, and the view's m_outerStride (when present) spaces the
// outer slices.
func BlockFromValue(v host.Value, session host.Session, vector bool) (DenseStorage, error) {
	viewName := host.Stripped(v.Type()).Name()
	owningName, err := OwningTypeName(viewName)
	if err != nil {
		return DenseStorage{}, err
	}
	owningDesc, err := typedesc.Parse(owningName)
	if err != nil {
		return DenseStorage{}, err
	}
	owningShape, err := typedesc.ParseDenseShape(owningDesc)
	if err != nil {
		return DenseStorage{}, err
	}
	viewDesc, err := typedesc.Parse(viewName)
	if err != nil {
		return DenseStorage{}, err
	}
	shape, err := viewShape(viewDesc, owningShape, vector)
	if err != nil {
		return DenseStorage{}, err
	}

	owningType, err := session.LookupType(owningName)
	if err != nil {
		return DenseStorage{}, typedesc.NewHostError("lookup "+owningName, err)
	}
	owning, err := v.Cast(owningType)
	if err != nil {
		return DenseStorage{}, typedesc.NewHostError("reinterpret view as "+owningName, err)
	}

	data, err := storageData(owning)
	if err != nil {
		return DenseStorage{}, err
	}
	if host.Stripped(data.Type()).Kind() != host.KindPointer {
		return DenseStorage{}, &typedesc.Error{
			Code:     typedesc.ErrCodeUnsupportedView,
			Message:  "owning type stores its coefficients inline",
			TypeName: viewName,
		}
	}
	rows, cols, err := typedesc.ResolveDims(shape, owning)
	if err != nil {
		return DenseStorage{}, err
	}

	stride := 0
	if f, err := v.Field(FieldOuterStride); err == nil {
		n, err := f.Int()
		if err != nil {
			return DenseStorage{}, typedesc.NewHostError("read "+FieldOuterStride, err)
		}
		if stride, err = typedesc.Dim(FieldOuterStride, n); err != nil {
			return DenseStorage{}, err
		}
	}

	return DenseStorage{
		Data:        data,
		Rows:        rows,
		Cols:        cols,
		RowMajor:    shape.RowMajor,
		OuterStride: stride,
	}, nil
}

// viewShape combines the view's size parameters with the owning type's
// storage options. A VectorBlock has a single size parameter that applies to
// the owning vector's non-degenerate axis.
func viewShape(view typedesc.Descriptor, owning typedesc.DenseShape, vector bool) (typedesc.DenseShape, error) {
	shape := typedesc.DenseShape{Options: owning.Options, RowMajor: owning.RowMajor}

	if vector {
		if err := view.Require(2); err != nil {
			return shape, err
		}
		size, err := typedesc.ParseAxis(view.Name, view.Params[1])
		if err != nil {
			return shape, err
		}
		if owning.Cols == typedesc.Static(1) {
			shape.Rows, shape.Cols = size, typedesc.Static(1)
		} else {
			shape.Rows, shape.Cols = typedesc.Static(1), size
		}
		return shape, nil
	}

	if err := view.Require(3); err != nil {
		return shape, err
	}
	var err error
	if shape.Rows, err = typedesc.ParseAxis(view.Name, view.Params[1]); err != nil {
		return shape, err
	}
	if shape.Cols, err = typedesc.ParseAxis(view.Name, view.Params[2]); err != nil {
		return shape, err
	}
	return shape, nil
}
