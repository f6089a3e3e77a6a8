// Package snapshot describes debugger frames as documents and lays them out
// in a memimage.Image.
//
// A document lists named values at the container level:
//
//	values:
//	  - name: m
//	    kind: matrix
//	    rows: 2
//	    cols: 3
//	    dynamic_cols: true
//	    data: [1, 2, 3,
//	           4, 5, 6]
//	  - name: top
//	    kind: block
//	    of: m
//	    rows: 1
//	    cols: 2
//	    start_col: 1
//
// Documents are YAML (.yaml, .yml) or CUE (.cue). CUE documents are unified
// with the embedded #Snapshot schema before decoding. Dense data is always
// given row by row; Materialize writes it in the value's storage order.
package snapshot
