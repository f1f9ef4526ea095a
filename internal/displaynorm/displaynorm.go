// Package displaynorm renames and merges the immediate children of the
// author root into canonical "Last, First" folder names before the scan
// and matching passes run.
package displaynorm

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/sortbook/authors/internal/dirmerger"
	"github.com/sortbook/authors/internal/pathsafety"
	"github.com/sortbook/authors/internal/stringnorm"
)

// Normalizer drives the rename-and-merge pass over a root directory's
// immediate children.
type Normalizer struct {
	Merger *dirmerger.Merger
	Logger *slog.Logger

	// Residues accumulates every non-empty directory left behind by a
	// collision merge across the run, for the caller's closing summary.
	Residues []string
}

// New builds a Normalizer. Either argument may be nil to get a default.
func New(merger *dirmerger.Merger, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if merger == nil {
		merger = dirmerger.New(logger)
	}
	return &Normalizer{Merger: merger, Logger: logger}
}

// Run processes every immediate child of root in lexicographic order of
// its original name, renaming or merging as needed, and returns the final
// set of top-level child names present after the pass.
func (n *Normalizer) Run(root string, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, original := range names {
		if err := n.normalizeOne(root, original, dryRun); err != nil {
			n.Logger.Warn("failed to normalize folder", "folder", original, "error", err)
		}
	}

	finalEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var final []string
	for _, e := range finalEntries {
		if e.IsDir() {
			final = append(final, e.Name())
		}
	}
	sort.Strings(final)
	return final, nil
}

func (n *Normalizer) normalizeOne(root, original string, dryRun bool) error {
	target := pathsafety.SanitizeComponent(NormalizeAuthorDisplay(original))
	if target == original {
		return nil
	}

	originalPath := filepath.Join(root, original)
	targetPath := filepath.Join(root, target)

	if !existsOtherThan(root, target, original) {
		if dryRun {
			n.Logger.Info("would rename folder", "from", original, "to", target)
			return nil
		}
		n.Logger.Info("renaming folder", "from", original, "to", target)
		return pathsafety.RenameWithCaseHandling(originalPath, targetPath)
	}

	// Collision: decide the survivor by file count, then lexicographic
	// name, and merge the other folder into it.
	originalCount := countFiles(originalPath)
	targetCount := countFiles(targetPath)

	survivorPath, survivorName := targetPath, target
	sourcePath, sourceName := originalPath, original
	survivorIsOriginal := false
	switch {
	case originalCount > targetCount:
		survivorIsOriginal = true
	case originalCount == targetCount && original < target:
		survivorIsOriginal = true
	}
	if survivorIsOriginal {
		survivorPath, survivorName = originalPath, original
		sourcePath, sourceName = targetPath, target
	}

	n.Logger.Info("folder name collision, merging",
		"source", sourceName, "destination", survivorName,
		"source_files", countFiles(sourcePath), "destination_files", countFiles(survivorPath))

	if dryRun {
		n.Logger.Info("would merge folder", "source", sourceName, "destination", survivorName)
		return nil
	}

	result, err := n.Merger.Merge(sourcePath, survivorPath, dryRun)
	if err != nil {
		return err
	}
	n.Residues = append(n.Residues, result.Residues...)

	// If the elected survivor isn't the sanitized target name, rename it
	// into place now that the collision is resolved.
	if survivorPath != targetPath {
		return pathsafety.RenameWithCaseHandling(survivorPath, targetPath)
	}
	return nil
}

// existsOtherThan reports whether a directory named target exists directly
// under root and is not the same directory entry as original. On a
// case-insensitive filesystem a case-only rename target resolves to the
// same inode as original and is not a collision; on a case-sensitive
// filesystem two differently-cased names are distinct directories and a
// collision is real (os.SameFile tells the two cases apart).
func existsOtherThan(root, target, original string) bool {
	targetInfo, err := os.Lstat(filepath.Join(root, target))
	if err != nil || !targetInfo.IsDir() {
		return false
	}
	originalInfo, err := os.Lstat(filepath.Join(root, original))
	if err != nil {
		return true
	}
	return !os.SameFile(targetInfo, originalInfo)
}

func countFiles(dir string) int {
	count := 0
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// NormalizeAuthorDisplay reshapes a raw folder name into "Last, First
// Middle…" form: accents are stripped, separators are unified to spaces,
// an existing comma is trusted as already being in "Last, First" form,
// an all-caps input is lowercased before title-casing, and every token is
// title-cased.
func NormalizeAuthorDisplay(original string) string {
	s := stringnorm.StripAccents(original)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = collapseWhitespace(s)

	if !strings.Contains(s, ",") {
		if fields := strings.Fields(s); len(fields) >= 2 {
			last := fields[len(fields)-1]
			rest := fields[:len(fields)-1]
			s = last + ", " + strings.Join(rest, " ")
		}
	}

	if isAllUpperCase(s) {
		s = strings.ToLower(s)
	}

	return titleCaseCommaForm(s)
}

// titleCaseCommaForm title-cases each token on either side of the first
// comma, preserving the ", " separator if present.
func titleCaseCommaForm(s string) string {
	parts := strings.SplitN(s, ",", 2)
	last := titleCaseWords(strings.TrimSpace(parts[0]))
	if len(parts) == 1 {
		return last
	}
	rest := titleCaseWords(strings.TrimSpace(parts[1]))
	return last + ", " + rest
}

func titleCaseWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = titleCaseToken(f)
	}
	return strings.Join(fields, " ")
}

func titleCaseToken(tok string) string {
	if tok == "" {
		return tok
	}
	runes := []rune(strings.ToLower(tok))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isAllUpperCase(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
