// Package pipeline orchestrates a single consolidation run: display
// normalization, scanning, matching, CSV emission, and group merging.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/sortbook/authors/internal/authority"
	"github.com/sortbook/authors/internal/csvemitter"
	"github.com/sortbook/authors/internal/dirmerger"
	"github.com/sortbook/authors/internal/displaynorm"
	"github.com/sortbook/authors/internal/groupmerger"
	"github.com/sortbook/authors/internal/matcher"
)

// Config holds one run's parameters, mirroring the CLI flags.
type Config struct {
	Root              string
	CSVPath           string
	MinFiles          int
	ProbableThreshold float64
	DryRun            bool
}

// RunSummary reports the final counters for the closing log line.
type RunSummary struct {
	EntriesScanned    int
	ExactMatches      int
	ProbableSuggested int
	GroupsMerged      int
	NonEmptyResidues  int
}

// Run executes one full pass over cfg.Root against store, writing the CSV
// to cfg.CSVPath and consolidating author groups in place.
func Run(ctx context.Context, cfg Config, store authority.Store, logger *slog.Logger) (RunSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var summary RunSummary

	merger := dirmerger.New(logger)
	normalizer := displaynorm.New(merger, logger)

	folders, err := normalizer.Run(cfg.Root, cfg.DryRun)
	if err != nil {
		return summary, err
	}

	entries, err := scan(cfg.Root, folders)
	if err != nil {
		return summary, err
	}
	summary.EntriesScanned = len(entries)

	m := matcher.New(store, logger)
	rows := make([]csvemitter.Row, 0, len(entries))
	groupEntries := make([]groupmerger.Entry, 0, len(entries))

	for _, e := range entries {
		result := m.Match(ctx, e.display)

		row := csvemitter.Row{FolderName: e.folderName}
		ge := groupmerger.Entry{FolderName: e.folderName, Display: e.display, FileCount: e.fileCount}

		switch {
		case result.AuthorID != "":
			row.AuthorID = result.AuthorID
			row.AuthorNameDB = result.AuthorNameDB
			ge.AuthorID = result.AuthorID
			ge.AuthorNameDB = result.AuthorNameDB
			summary.ExactMatches++
		case result.Suggestion != nil:
			row.Probable = &csvemitter.Suggestion{
				AuthorID: result.Suggestion.AuthorID,
				Name:     result.Suggestion.Name,
				Avg:      result.Suggestion.Avg,
				Scores:   result.Suggestion.Scores,
			}
			ge.ProbableID = result.Suggestion.AuthorID
			ge.ProbableName = result.Suggestion.Name
			ge.ProbableAvg = result.Suggestion.Avg
			summary.ProbableSuggested++
		}

		rows = append(rows, row)
		groupEntries = append(groupEntries, ge)
	}

	if !cfg.DryRun {
		if err := csvemitter.Write(cfg.CSVPath, rows); err != nil {
			return summary, err
		}
	} else {
		logger.Info("dry run: CSV not written", "path", cfg.CSVPath, "rows", len(rows))
	}

	gm := groupmerger.New(cfg.Root, merger, logger)
	results, err := gm.Run(groupEntries, cfg.MinFiles, cfg.ProbableThreshold, cfg.DryRun)
	if err != nil {
		return summary, err
	}
	summary.GroupsMerged = len(results)
	summary.NonEmptyResidues = len(normalizer.Residues) + len(gm.Residues)

	return summary, nil
}

type scannedEntry struct {
	folderName string
	display    string
	fileCount  int
}

// scan builds one entry per surviving top-level folder, in lexicographic
// order, recursively counting its regular files.
func scan(root string, folders []string) ([]scannedEntry, error) {
	names := make([]string, len(folders))
	copy(names, folders)
	sort.Strings(names)

	entries := make([]scannedEntry, 0, len(names))
	for _, name := range names {
		count, err := countFiles(filepath.Join(root, name))
		if err != nil {
			return nil, err
		}
		entries = append(entries, scannedEntry{folderName: name, display: name, fileCount: count})
	}
	return entries, nil
}

func countFiles(dir string) (int, error) {
	count := 0
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}
