// Package layout walks the physical storage of dense, sparse, quaternion and
// block-view containers and yields logical (row, col, value) entries.
//
// Every walk is driven by sizes that have already been resolved, so all
// iterators are finite. Iterators read lazily through host.Value and stop at
// the first host error, which is reported by Err.
//
// Storage order:
//   - Dense: one contiguous array in row- or column-major order. Block views
//     add an outer stride between slices.
//   - Sparse: per-outer-slice ranges into sorted inner-index and value arrays,
//     compressed or not.
//   - Quaternion: four inline coefficients x, y, z, w.
package layout
