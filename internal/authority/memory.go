package authority

import (
	"context"
	"sort"
)

// MemoryStore is an in-memory Store implementation backed by a sorted
// slice of records, used by tests and small one-off runs that don't
// warrant a SQLite database.
type MemoryStore struct {
	records []Record
}

// NewMemoryStore builds a MemoryStore from records, sorting them by
// NameNormalized to support the ordered neighbor scan.
func NewMemoryStore(records []Record) *MemoryStore {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].NameNormalized < sorted[j].NameNormalized
	})
	return &MemoryStore{records: sorted}
}

// LookupExact implements Store.
func (m *MemoryStore) LookupExact(_ context.Context, normalized string) (Record, bool, error) {
	i := sort.Search(len(m.records), func(i int) bool {
		return m.records[i].NameNormalized >= normalized
	})
	if i < len(m.records) && m.records[i].NameNormalized == normalized {
		return m.records[i], true, nil
	}
	return Record{}, false, nil
}

// Neighbors implements Store.
func (m *MemoryStore) Neighbors(_ context.Context, normalized string) ([]Record, error) {
	i := sort.Search(len(m.records), func(i int) bool {
		return m.records[i].NameNormalized >= normalized
	})

	var out []Record
	ascCount := 0
	for j := i; j < len(m.records) && ascCount < NeighborWindowSize; j++ {
		out = append(out, m.records[j])
		ascCount++
	}
	descCount := 0
	for j := i - 1; j >= 0 && descCount < NeighborWindowSize; j-- {
		out = append(out, m.records[j])
		descCount++
	}
	return out, nil
}

// Close implements Store. It is a no-op: there is no underlying resource.
func (m *MemoryStore) Close() error {
	return nil
}
