// Package groupmerger consolidates author folders that share a confirmed
// or sufficiently probable author identifier into a single destination
// folder, elected by alignment with the authority record.
package groupmerger

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sortbook/authors/internal/dirmerger"
	"github.com/sortbook/authors/internal/scorer"
)

// Entry is the minimal view of an author folder groupmerger needs: its
// identity, display name, size, and match outcome.
type Entry struct {
	FolderName   string
	Display      string
	FileCount    int
	AuthorID     string // confirmed, may be empty
	AuthorNameDB string // confirmed, may be empty

	ProbableID   string // may be empty
	ProbableName string
	ProbableAvg  float64
}

// effectiveIdentifier returns the identifier GroupMerger groups by: the
// confirmed author_id if present, else the probable id when its average
// meets threshold.
func effectiveIdentifier(e Entry, threshold float64) (id, referenceName string, ok bool) {
	if e.AuthorID != "" {
		return e.AuthorID, e.AuthorNameDB, true
	}
	if e.ProbableID != "" && e.ProbableAvg >= threshold {
		return e.ProbableID, e.ProbableName, true
	}
	return "", "", false
}

// MergeResult logs and reports one group's merge outcome.
type MergeResult struct {
	Identifier  string
	Destination string
	Sources     []string
}

// Merger drives the group-by-identifier consolidation pass.
type Merger struct {
	DirMerger *dirmerger.Merger
	Root      string
	Logger    *slog.Logger

	// Residues accumulates every non-empty directory left behind by a
	// group merge across the run, for the caller's closing summary.
	Residues []string
}

// New builds a Merger. Logger may be nil.
func New(root string, dirMerger *dirmerger.Merger, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if dirMerger == nil {
		dirMerger = dirmerger.New(logger)
	}
	return &Merger{DirMerger: dirMerger, Root: root, Logger: logger}
}

// Run groups entries by effective identifier, filters by minFiles, and
// merges every group with more than one surviving member.
func (m *Merger) Run(entries []Entry, minFiles int, probableThreshold float64, dryRun bool) ([]MergeResult, error) {
	type group struct {
		identifier    string
		referenceName string
		members       []Entry
	}

	groups := make(map[string]*group)
	var order []string

	for _, e := range entries {
		if e.FileCount < minFiles {
			continue
		}
		id, refName, ok := effectiveIdentifier(e, probableThreshold)
		if !ok {
			continue
		}
		g, exists := groups[id]
		if !exists {
			g = &group{identifier: id, referenceName: refName}
			groups[id] = g
			order = append(order, id)
		}
		g.members = append(g.members, e)
	}

	var results []MergeResult
	for _, id := range order {
		g := groups[id]
		if len(g.members) < 2 {
			continue
		}

		result, err := m.mergeGroup(g.identifier, g.referenceName, g.members, dryRun)
		if err != nil {
			m.Logger.Warn("group merge failed", "identifier", g.identifier, "error", err)
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

func (m *Merger) mergeGroup(identifier, referenceName string, members []Entry, dryRun bool) (MergeResult, error) {
	type ranked struct {
		entry     Entry
		alignment float64
	}

	lastFirst := lastFirstPermutation(referenceName)

	rankedMembers := make([]ranked, 0, len(members))
	for _, e := range members {
		a := scorer.Score(e.Display, referenceName).Seq
		b := scorer.Score(e.Display, lastFirst).Seq
		alignment := a
		if b > alignment {
			alignment = b
		}
		rankedMembers = append(rankedMembers, ranked{entry: e, alignment: alignment})
	}

	sort.SliceStable(rankedMembers, func(i, j int) bool {
		a, b := rankedMembers[i], rankedMembers[j]
		if a.alignment != b.alignment {
			return a.alignment > b.alignment
		}
		if a.entry.FileCount != b.entry.FileCount {
			return a.entry.FileCount > b.entry.FileCount
		}
		return a.entry.FolderName < b.entry.FolderName
	})

	destination := rankedMembers[0].entry
	destPath := filepath.Join(m.Root, destination.FolderName)

	result := MergeResult{Identifier: identifier, Destination: destination.FolderName}

	for _, r := range rankedMembers[1:] {
		srcPath := filepath.Join(m.Root, r.entry.FolderName)

		m.Logger.Info("merging author group member",
			"identifier", identifier,
			"source", r.entry.FolderName,
			"destination", destination.FolderName,
			"source_alignment", r.alignment,
			"destination_alignment", rankedMembers[0].alignment)

		if dryRun {
			m.Logger.Info("would merge author group member", "source", r.entry.FolderName, "destination", destination.FolderName)
			result.Sources = append(result.Sources, r.entry.FolderName)
			continue
		}

		mergeResult, err := m.DirMerger.Merge(srcPath, destPath, dryRun)
		if err != nil {
			return result, err
		}
		m.Residues = append(m.Residues, mergeResult.Residues...)
		result.Sources = append(result.Sources, r.entry.FolderName)
	}

	return result, nil
}

// lastFirstPermutation swaps a "Last, First Middle" name to "First Middle
// Last" (or the reverse, if no comma is present), so alignment can be
// checked against whichever form the folder's display name happens to use.
func lastFirstPermutation(name string) string {
	if idx := strings.Index(name, ", "); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		rest := strings.TrimSpace(name[idx+2:])
		return rest + " " + last
	}

	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	last := fields[len(fields)-1]
	rest := fields[:len(fields)-1]
	return last + ", " + strings.Join(rest, " ")
}
