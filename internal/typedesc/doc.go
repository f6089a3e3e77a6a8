// Package typedesc decodes container shape from type names.
//
// Debuggers expose type template arguments only for type parameters, not for
// integer ones, so sizes and storage options are recovered from the type's
// display name:
//
//	Eigen::Matrix<double, -1, 3, 0, -1, 3>
//	              scalar  rows cols options maxrows maxcols
//
// A size argument is either a compile-time constant or one of the dynamic
// sentinels (-1 in the spellings debuggers print). Dynamic axes are resolved
// from the runtime m_storage.m_rows / m_storage.m_cols fields; static axes
// never read memory.
//
// The package also owns the decode error taxonomy (errors.go) shared by the
// layout and printer packages.
package typedesc
