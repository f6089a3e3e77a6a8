// Package render turns iterated entries into the structured grid document
// returned to the host, and into aligned text for terminals.
//
// The grid is serialized as canonical JSON so that identical matrices always
// produce byte-identical documents, which keeps golden files stable.
package render
