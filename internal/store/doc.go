// Package store provides SQLite-backed storage for snapshot documents.
//
// A snapshot is stored verbatim (YAML or CUE source) together with the names
// and kinds of its values, so that listings never need to re-parse a
// document. Loading a snapshot re-parses and re-validates the source.
//
// # Identity and Ordering
//
//   - IDs are UUID v7 strings assigned at first import
//   - Re-importing under an existing name replaces the source and keeps the ID
//   - Listings are ordered by seq (a logical clock), then id COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
