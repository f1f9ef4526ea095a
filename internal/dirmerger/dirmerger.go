// Package dirmerger merges one directory tree into another without data
// loss: files that collide on relative path are resolved by keeping the
// larger one, directories are created as needed, and the source tree is
// removed once everything beneath it has been moved or superseded.
package dirmerger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/sortbook/authors/internal/foundation/errors"
	"github.com/sortbook/authors/internal/pathsafety"
)

// Result summarizes one Merge call for logging and testing.
type Result struct {
	FilesMoved      int
	FilesSuperseded int // source files deleted because the destination was >= size
	FilesReplaced   int // destination files overwritten because the source was larger
	DirsCreated     int
	Residues        []string // non-empty directories left behind under src
}

// Merger drives tree merges. Logger may be nil (slog.Default() is used).
type Merger struct {
	Logger *slog.Logger
}

// New builds a Merger.
func New(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{Logger: logger}
}

// Merge walks src depth-first and merges every entry into dst, honoring
// dryRun: when true, no filesystem mutation happens and every planned
// operation is logged instead.
func (m *Merger) Merge(src, dst string, dryRun bool) (Result, error) {
	var result Result

	paths, err := collectRelativePaths(src)
	if err != nil {
		return result, errors.WrapError(err, errors.CategoryFileSystem, "walk merge source").
			WithContext("src", src).Build()
	}

	for _, rel := range paths {
		sanitizedRel := sanitizeRelPath(rel)
		srcPath := filepath.Join(src, rel)
		dstPath := filepath.Join(dst, sanitizedRel)

		info, err := os.Lstat(srcPath)
		if err != nil {
			m.Logger.Warn("unreadable path during merge, skipping", "path", srcPath, "error", err)
			continue
		}

		if info.IsDir() {
			if dryRun {
				m.Logger.Info("would create directory", "path", dstPath)
				continue
			}
			if err := os.MkdirAll(dstPath, 0o755); err != nil {
				m.Logger.Warn("failed to create directory during merge", "path", dstPath, "error", err)
				continue
			}
			result.DirsCreated++
			continue
		}

		if err := m.mergeFile(srcPath, dstPath, info, dryRun, &result); err != nil {
			m.Logger.Warn("failed to merge file", "src", srcPath, "dst", dstPath, "error", err)
		}
	}

	if dryRun {
		m.Logger.Info("dry run: leaving merge source in place", "src", src)
		return result, nil
	}

	residues := cleanupEmptyDirs(src)
	result.Residues = residues
	for _, r := range residues {
		m.Logger.Warn("non-empty directory left after merge", "path", r)
	}

	return result, nil
}

func (m *Merger) mergeFile(srcPath, dstPath string, srcInfo os.FileInfo, dryRun bool, result *Result) error {
	dstInfo, err := os.Lstat(dstPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.WrapError(err, errors.CategoryMerge, "stat merge destination").
				WithContext("dst", dstPath).Build()
		}
		if dryRun {
			m.Logger.Info("would move file", "src", srcPath, "dst", dstPath, "size", humanize.Bytes(uint64(srcInfo.Size())))
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create destination parent").
				WithContext("dst", dstPath).Build()
		}
		if err := moveFile(srcPath, dstPath); err != nil {
			return err
		}
		result.FilesMoved++
		m.Logger.Info("moved file", "src", srcPath, "dst", dstPath, "size", humanize.Bytes(uint64(srcInfo.Size())))
		return nil
	}

	// Collision: keep the larger file (destination wins size ties).
	srcSize, dstSize := srcInfo.Size(), dstInfo.Size()
	if srcSize > dstSize {
		if dryRun {
			m.Logger.Info("would replace smaller destination file", "src", srcPath, "dst", dstPath,
				"src_size", humanize.Bytes(uint64(srcSize)), "dst_size", humanize.Bytes(uint64(dstSize)))
			return nil
		}
		if err := os.Remove(dstPath); err != nil {
			return errors.WrapError(err, errors.CategoryMerge, "remove superseded destination file").
				WithContext("dst", dstPath).Build()
		}
		if err := moveFile(srcPath, dstPath); err != nil {
			return err
		}
		result.FilesReplaced++
		m.Logger.Info("replaced smaller destination file", "src", srcPath, "dst", dstPath,
			"src_size", humanize.Bytes(uint64(srcSize)), "dst_size", humanize.Bytes(uint64(dstSize)))
		return nil
	}

	if dryRun {
		m.Logger.Info("would drop superseded source file", "src", srcPath, "dst", dstPath,
			"src_size", humanize.Bytes(uint64(srcSize)), "dst_size", humanize.Bytes(uint64(dstSize)))
		return nil
	}
	if err := os.Remove(srcPath); err != nil {
		return errors.WrapError(err, errors.CategoryMerge, "remove superseded source file").
			WithContext("src", srcPath).Build()
	}
	result.FilesSuperseded++
	m.Logger.Info("dropped superseded source file", "src", srcPath, "dst", dstPath,
		"src_size", humanize.Bytes(uint64(srcSize)), "dst_size", humanize.Bytes(uint64(dstSize)))
	return nil
}

// collectRelativePaths returns every entry under root (files and
// directories), relative to root, in depth-first lexicographic order so
// parent directories are created before their children.
func collectRelativePaths(root string) ([]string, error) {
	var rels []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal to the walk
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(rels)
	return rels, nil
}

// sanitizeRelPath sanitizes each path component of rel independently.
func sanitizeRelPath(rel string) string {
	parts := splitPath(rel)
	for i, p := range parts {
		parts[i] = pathsafety.SanitizeComponent(p)
	}
	return filepath.Join(parts...)
}

func splitPath(rel string) []string {
	var parts []string
	for {
		dir, file := filepath.Split(rel)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		dir = filepath.Clean(dir)
		if dir == "." || dir == rel || dir == "" {
			break
		}
		rel = dir
	}
	return parts
}

// moveFile renames srcPath to dstPath, falling back to copy-then-unlink
// when the two paths are not on the same filesystem.
func moveFile(srcPath, dstPath string) error {
	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return errors.WrapError(err, errors.CategoryMerge, "open source file for cross-device copy").
			WithContext("src", srcPath).Build()
	}
	defer in.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return errors.WrapError(err, errors.CategoryMerge, "create destination file for cross-device copy").
			WithContext("dst", dstPath).Build()
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.WrapError(err, errors.CategoryMerge, "copy file across devices").
			WithContext("src", srcPath).WithContext("dst", dstPath).Build()
	}
	if err := in.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryMerge, "close source file after copy").Build()
	}
	if err := out.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryMerge, "close destination file after copy").Build()
	}
	return os.Remove(srcPath)
}

// cleanupEmptyDirs removes root and every directory beneath it that is
// empty after the merge, deepest first, and reports the paths that could
// not be removed because they still contain entries.
func cleanupEmptyDirs(root string) []string {
	var dirs []string
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || !info.IsDir() {
			return nil
		}
		dirs = append(dirs, path)
		return nil
	})

	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	var residues []string
	for _, d := range dirs {
		entries, err := os.ReadDir(d)
		if err != nil {
			residues = append(residues, d)
			continue
		}
		if len(entries) > 0 {
			residues = append(residues, d)
			continue
		}
		if err := os.Remove(d); err != nil {
			residues = append(residues, d)
		}
	}
	return residues
}
