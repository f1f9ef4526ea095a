package authority

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	return []Record{
		{AuthorID: "OL1A", Name: "Jean Dupont", NameNormalized: "jean dupont"},
		{AuthorID: "OL2A", Name: "Victor Hugo", NameNormalized: "victor hugo"},
		{AuthorID: "OL3A", Name: "Emile Zola", NameNormalized: "emile zola"},
		{AuthorID: "OL4A", Name: "Albert Camus", NameNormalized: "albert camus"},
	}
}

func TestMemoryStoreLookupExact(t *testing.T) {
	store := NewMemoryStore(sampleRecords())

	rec, ok, err := store.LookupExact(context.Background(), "emile zola")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "OL3A", rec.AuthorID)

	_, ok, err = store.LookupExact(context.Background(), "no such author")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreNeighbors(t *testing.T) {
	store := NewMemoryStore(sampleRecords())

	neighbors, err := store.Neighbors(context.Background(), "emile zola")
	require.NoError(t, err)

	var ids []string
	for _, n := range neighbors {
		ids = append(ids, n.AuthorID)
	}
	assert.Contains(t, ids, "OL3A") // self, ascending bound is inclusive
	assert.Contains(t, ids, "OL4A") // descending neighbor: "albert camus" sorts before the key
}

func TestMemoryStoreNeighborsBoundedWindow(t *testing.T) {
	records := make([]Record, 0, 100)
	for i := 0; i < 100; i++ {
		records = append(records, Record{
			AuthorID:       string(rune('a' + i%26)),
			Name:           string(rune('a' + i%26)),
			NameNormalized: string(rune('a'+i%26)) + string(rune('0'+i/26)),
		})
	}
	store := NewMemoryStore(records)

	neighbors, err := store.Neighbors(context.Background(), "m0")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(neighbors), 2*NeighborWindowSize)
}

func TestMemoryStoreClose(t *testing.T) {
	store := NewMemoryStore(nil)
	assert.NoError(t, store.Close())
}
