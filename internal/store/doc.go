// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic. Implementations provide per-document atomic
// writes only; no operation spans several documents transactionally.
package store
