// Package authority defines the read-only authority-database contract
// consumed by the matcher: exact lookup by normalized name, and an
// ordered neighbor-window scan around a normalized query key.
//
// The capability set is intentionally small — {LookupExact, Neighbors} —
// so any backend that can satisfy it qualifies: a relational store, an
// embedded key-value store, or an in-memory map for tests.
package authority

import "context"

// NeighborWindowSize is the fixed number of records fetched in each
// direction (ascending and descending) from a neighbor scan.
const NeighborWindowSize = 25

// Record is a single authority-database entry: an opaque stable
// identifier, its display name, and the canonical normalized key used
// for equality and ordered scans.
type Record struct {
	AuthorID       string
	Name           string
	NameNormalized string
}

// Store is the read-only capability set the matcher depends on.
type Store interface {
	// LookupExact returns the record whose NameNormalized equals
	// normalized, if one exists.
	LookupExact(ctx context.Context, normalized string) (Record, bool, error)

	// Neighbors returns up to NeighborWindowSize records with
	// NameNormalized >= normalized (ascending) followed by up to
	// NeighborWindowSize records with NameNormalized < normalized
	// (descending), for index-bounded fuzzy-candidate retrieval.
	Neighbors(ctx context.Context, normalized string) ([]Record, error)

	// Close releases the store's underlying resources.
	Close() error
}
