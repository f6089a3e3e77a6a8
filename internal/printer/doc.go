// Package printer selects and builds the pretty-printer for a host value.
//
// Selection is a single classification step: the value's type is stripped
// of references, qualifiers and typedefs, and its tag is matched against an
// ordered Registry. The first matching Rule picks a Family, and the family
// picks the printer:
//
//	quaternion            -> QuaternionPrinter (summary + 4 coefficients)
//	matrix, array         -> DensePrinter      (grid document)
//	block, vector_block   -> DensePrinter      (view reinterpreted as its owning matrix)
//	sparse_matrix         -> SparsePrinter     (summary + every logical cell)
//
// Registries are built once and never modified. Dispatcher.Lookup is the
// host-facing entry point and never fails: every decode error becomes "no
// printer". Dispatcher.Resolve returns the same result with the error kept.
package printer
