// Package matcher resolves each author folder against the authority
// store: an exact-match pass over VariantGen's candidate strings, then a
// bounded fuzzy-suggestion pass over the authority store's neighbor
// window.
package matcher

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sortbook/authors/internal/authority"
	"github.com/sortbook/authors/internal/foundation/errors"
	"github.com/sortbook/authors/internal/scorer"
	"github.com/sortbook/authors/internal/stringnorm"
	"github.com/sortbook/authors/internal/variantgen"
)

// AcceptanceFloor is the minimum fused score for a candidate to be
// retained as a probable suggestion.
const AcceptanceFloor = 0.65

// ShortCircuitScore stops the neighbor scan early once a candidate this
// good is found.
const ShortCircuitScore = 0.85

// Suggestion is the best-guess probable identifier for an unmatched
// entry.
type Suggestion struct {
	AuthorID string
	Name     string
	Avg      float64
	Scores   scorer.Scores
}

// Result is what Matcher.Match returns for one entry.
type Result struct {
	// AuthorID and AuthorNameDB are set iff an exact match was found;
	// Suggestion is set iff no exact match was found and the best
	// neighbor candidate met AcceptanceFloor. At most one of the two
	// outcomes applies.
	AuthorID     string
	AuthorNameDB string
	Suggestion   *Suggestion
}

// Matcher layers an exact-lookup cache and a neighbor-window cache over
// an authority.Store to avoid repeated queries for entries whose folder
// names share a candidate variant or a neighbor window.
type Matcher struct {
	store          authority.Store
	logger         *slog.Logger
	exactCache     map[string]exactCacheEntry
	neighborsCache map[string][]authority.Record
}

type exactCacheEntry struct {
	rec authority.Record
	hit bool
}

// New builds a Matcher over store. logger may be nil, in which case
// slog.Default() is used.
func New(store authority.Store, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		store:          store,
		logger:         logger,
		exactCache:     make(map[string]exactCacheEntry),
		neighborsCache: make(map[string][]authority.Record),
	}
}

// Match resolves display against the authority store: variant-based
// exact lookup first, then a bounded fuzzy suggestion.
func (m *Matcher) Match(ctx context.Context, display string) Result {
	for _, variant := range variantgen.Generate(display) {
		normalized := stringnorm.NormalizeName(variant)
		if normalized == "" {
			continue
		}

		rec, hit, err := m.lookupExactCached(ctx, normalized)
		if err != nil {
			// A failing lookup is treated as a miss for this variant,
			// logged once, and the scan continues with the next variant.
			m.logger.Warn("authority exact lookup failed", "query", normalized, "error", err)
			continue
		}
		if hit {
			return Result{AuthorID: rec.AuthorID, AuthorNameDB: rec.Name}
		}
	}

	suggestion := m.suggest(ctx, display)
	return Result{Suggestion: suggestion}
}

func (m *Matcher) lookupExactCached(ctx context.Context, normalized string) (authority.Record, bool, error) {
	if cached, ok := m.exactCache[normalized]; ok {
		return cached.rec, cached.hit, nil
	}

	rec, hit, err := m.store.LookupExact(ctx, normalized)
	if err != nil {
		return authority.Record{}, false, err
	}

	m.exactCache[normalized] = exactCacheEntry{rec: rec, hit: hit}
	return rec, hit, nil
}

func (m *Matcher) neighborsCached(ctx context.Context, normalized string) ([]authority.Record, error) {
	if cached, ok := m.neighborsCache[normalized]; ok {
		return cached, nil
	}

	records, err := m.store.Neighbors(ctx, normalized)
	if err != nil {
		return nil, err
	}

	m.neighborsCache[normalized] = records
	return records, nil
}

// candidate pairs a scored authority record with its fused average, for
// the sort-then-short-circuit scan.
type candidate struct {
	rec    authority.Record
	scores scorer.Scores
	avg    float64
}

// suggest runs the bounded neighbor-window fuzzy match.
func (m *Matcher) suggest(ctx context.Context, display string) *Suggestion {
	normalized := stringnorm.NormalizeName(display)

	records, err := m.neighborsCached(ctx, normalized)
	if err != nil {
		e := errors.WrapError(err, errors.CategoryAuthority, "neighbor scan failed").
			WithContext("query", normalized).Build()
		m.logger.Warn(e.Message(), "query", normalized, "error", err)
		return nil
	}

	var candidates []candidate
	for _, rec := range records {
		scores := scorer.Score(normalized, rec.NameNormalized)
		avg := scores.Avg()
		if avg < AcceptanceFloor {
			continue
		}
		candidates = append(candidates, candidate{rec: rec, scores: scores, avg: avg})
		if avg >= ShortCircuitScore {
			break
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.avg != b.avg {
			return a.avg > b.avg
		}
		if a.scores.Seq != b.scores.Seq {
			return a.scores.Seq > b.scores.Seq
		}
		return a.rec.NameNormalized < b.rec.NameNormalized
	})

	best := candidates[0]
	if best.avg < AcceptanceFloor {
		return nil
	}

	return &Suggestion{
		AuthorID: best.rec.AuthorID,
		Name:     best.rec.Name,
		Avg:      best.avg,
		Scores:   best.scores,
	}
}
