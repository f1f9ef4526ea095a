// Package csvemitter writes the deterministic authors.csv output: one row
// per author folder, in lexicographic folder-name order, with a legacy
// pipe-delimited probable-suggestion field for downstream consumers.
package csvemitter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sortbook/authors/internal/foundation/errors"
	"github.com/sortbook/authors/internal/scorer"
)

// Header is the fixed CSV header row. Column order is normative for
// downstream consumers.
var Header = []string{"author", "author_id", "author_name_db", "probable_author_multi"}

// Suggestion is the minimal view of a Matcher suggestion this package
// needs to format the legacy probable_author_multi field.
type Suggestion struct {
	AuthorID string
	Name     string
	Avg      float64
	Scores   scorer.Scores
}

// Row is one author folder's result, ready for CSV emission.
type Row struct {
	FolderName   string
	AuthorID     string
	AuthorNameDB string
	Probable     *Suggestion
}

// Write ensures path's parent directory exists and writes rows sorted by
// FolderName, with the fixed Header row first.
func Write(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryCSV, "create CSV output directory").
			WithContext("path", path).Build()
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FolderName < sorted[j].FolderName })

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryCSV, "create CSV output file").
			WithContext("path", path).Build()
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return errors.WrapError(err, errors.CategoryCSV, "write CSV header").Build()
	}

	for _, row := range sorted {
		record := []string{row.FolderName, row.AuthorID, row.AuthorNameDB, formatProbable(row.Probable)}
		if err := w.Write(record); err != nil {
			return errors.WrapError(err, errors.CategoryCSV, "write CSV row").
				WithContext("folder", row.FolderName).Build()
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapError(err, errors.CategoryCSV, "flush CSV output").Build()
	}
	return nil
}

// formatProbable renders the legacy pipe-delimited suggestion field, empty
// when there is no suggestion.
func formatProbable(s *Suggestion) string {
	if s == nil {
		return ""
	}
	v := s.Scores.Vector()
	keys := scorer.MetricKeys

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|avg:%.2f", s.AuthorID, s.Name, s.Avg)
	for i, key := range keys {
		fmt.Fprintf(&b, "|%s:%.2f", key, v[i])
	}
	return b.String()
}
