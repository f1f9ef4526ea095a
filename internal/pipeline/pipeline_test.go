package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sortbook/authors/internal/authority"
)

func writeTestFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

// testStore holds records in "Last, First" normalized order, matching the
// shape DisplayNorm produces for two-token folder names, so exact-match
// and near-miss fuzzy scoring exercise realistic same-order comparisons.
func testStore() authority.Store {
	return authority.NewMemoryStore([]authority.Record{
		{AuthorID: "OL1A", Name: "Dupont, Jean", NameNormalized: "dupont jean"},
		{AuthorID: "OL2A", Name: "Hugo, Victor", NameNormalized: "hugo victor"},
		{AuthorID: "OL3A", Name: "Zola, Emile", NameNormalized: "zola emile"},
	})
}

func TestRunProducesExactMatchAndCSV(t *testing.T) {
	root := t.TempDir()
	csvPath := filepath.Join(root, "out", "authors.csv")

	writeTestFile(t, filepath.Join(root, "Émile Zola", "book.epub"))

	cfg := Config{Root: root, CSVPath: csvPath, ProbableThreshold: 0.90}
	summary, err := Run(context.Background(), cfg, testStore(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.EntriesScanned)
	assert.Equal(t, 1, summary.ExactMatches)

	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, `"Zola, Emile"`)
	assert.Contains(t, text, "OL3A")
}

func TestRunProducesProbableSuggestion(t *testing.T) {
	root := t.TempDir()
	csvPath := filepath.Join(root, "authors.csv")

	// "Jean Dupond" reshapes to "Dupond, Jean", a one-letter miss against
	// the stored "Dupont, Jean" in the same Last, First token order.
	writeTestFile(t, filepath.Join(root, "Jean Dupond", "book.epub"))

	cfg := Config{Root: root, CSVPath: csvPath, ProbableThreshold: 0.90}
	summary, err := Run(context.Background(), cfg, testStore(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.EntriesScanned)
	assert.Equal(t, 0, summary.ExactMatches)
	assert.Equal(t, 1, summary.ProbableSuggested)

	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "OL1A|Dupont, Jean|avg:")
}

func TestRunDryRunSkipsCSVWrite(t *testing.T) {
	root := t.TempDir()
	csvPath := filepath.Join(root, "authors.csv")

	writeTestFile(t, filepath.Join(root, "Émile Zola", "book.epub"))

	cfg := Config{Root: root, CSVPath: csvPath, ProbableThreshold: 0.90, DryRun: true}
	_, err := Run(context.Background(), cfg, testStore(), nil)
	require.NoError(t, err)

	assert.NoFileExists(t, csvPath)
}

func TestRunHandlesMultipleFoldersIndependently(t *testing.T) {
	root := t.TempDir()
	csvPath := filepath.Join(root, "authors.csv")

	writeTestFile(t, filepath.Join(root, "Victor Hugo", "a.epub"))
	writeTestFile(t, filepath.Join(root, "Unknown Writer", "b.epub"))

	cfg := Config{Root: root, CSVPath: csvPath, ProbableThreshold: 0.90}
	summary, err := Run(context.Background(), cfg, testStore(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.EntriesScanned)
	assert.Equal(t, 1, summary.ExactMatches)
}
