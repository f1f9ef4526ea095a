// Package scorer implements the six string-similarity metrics used to
// fuse a confidence score between a folder's display name and an
// authority-record candidate name.
package scorer

import (
	"github.com/sortbook/authors/internal/stringnorm"
	"github.com/sortbook/authors/internal/util/sets"
)

// MetricKeys is the fixed-arity, ordered metric key list used for CSV
// emission and per-metric score vectors. Order is normative.
var MetricKeys = [6]string{"seq", "token", "prefix", "suffix", "ngram", "lenratio"}

// Scores holds the six clamped [0,1] metric values, in the fixed order
// given by MetricKeys. Their average is computed by Avg.
type Scores struct {
	Seq      float64
	Token    float64
	Prefix   float64
	Suffix   float64
	Ngram    float64
	LenRatio float64
}

// Avg returns the arithmetic mean of the six metrics — the fused score.
func (s Scores) Avg() float64 {
	return (s.Seq + s.Token + s.Prefix + s.Suffix + s.Ngram + s.LenRatio) / 6
}

// Vector returns the six scores in MetricKeys order.
func (s Scores) Vector() [6]float64 {
	return [6]float64{s.Seq, s.Token, s.Prefix, s.Suffix, s.Ngram, s.LenRatio}
}

// Score computes all six metrics comparing the normalized forms of a and
// b. Callers that already hold normalized strings can pass them through
// unchanged since NormalizeName is idempotent.
func Score(a, b string) Scores {
	na, nb := stringnorm.NormalizeName(a), stringnorm.NormalizeName(b)

	return Scores{
		Seq:      clamp(seqRatio(na, nb)),
		Token:    clamp(tokenJaccard(na, nb)),
		Prefix:   clamp(affixRatio(na, nb, commonPrefixLen)),
		Suffix:   clamp(affixRatio(na, nb, commonSuffixLen)),
		Ngram:    clamp(ngramDice(na, nb)),
		LenRatio: clamp(lenRatio(na, nb)),
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// seqRatio implements a Ratcliff-Obershelp-style longest-common-subsequence
// ratio: 2*M / (|a|+|b|), where M is the total length matched by
// recursively finding the longest common substring and recursing into
// the left and right remainders.
func seqRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	m := matchingLength(ra, rb)
	return 2 * float64(m) / float64(len(ra)+len(rb))
}

// matchingLength recursively finds the longest common substring of a and
// b, then recurses into the unmatched left and right remainders, summing
// the total matched rune count.
func matchingLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	aStart, bStart, length := longestCommonSubstring(a, b)
	if length == 0 {
		return 0
	}

	left := matchingLength(a[:aStart], b[:bStart])
	right := matchingLength(a[aStart+length:], b[bStart+length:])
	return length + left + right
}

// longestCommonSubstring returns the start indices in a and b of their
// longest common contiguous run, and its length. Ties prefer the
// earliest match in a, then in b.
func longestCommonSubstring(a, b []rune) (aStart, bStart, length int) {
	// dp[j] holds the length of the common run ending at a[i-1] and
	// b[j-1]. A single row is reused across i, so memory is O(len(b)).
	dp := make([]int, len(b)+1)
	best := 0
	bestA, bestB := 0, 0

	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			temp := dp[j]
			if a[i-1] == b[j-1] {
				dp[j] = prevDiag + 1
				if dp[j] > best {
					best = dp[j]
					bestA = i
					bestB = j
				}
			} else {
				dp[j] = 0
			}
			prevDiag = temp
		}
	}

	if best == 0 {
		return 0, 0, 0
	}
	return bestA - best, bestB - best, best
}

// tokenJaccard computes |A ∩ B| / |A ∪ B| over token multisets treated
// as sets.
func tokenJaccard(a, b string) float64 {
	ta, tb := sets.New(stringnorm.Tokens(a)...), sets.New(stringnorm.Tokens(b)...)
	if ta.Len() == 0 && tb.Len() == 0 {
		return 1
	}

	union := ta.Union(tb)
	if union.Len() == 0 {
		return 0
	}
	return float64(ta.Intersection(tb)) / float64(union.Len())
}

// affixRatio divides the length of a's/b's matching affix (as computed
// by lenFn) by the longer of the two strings' lengths.
func affixRatio(a, b string, lenFn func(a, b []rune) int) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 0
	}
	return float64(lenFn(ra, rb)) / float64(maxLen)
}

func commonPrefixLen(a, b []rune) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b []rune) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

// ngramDice computes the Dice coefficient over bigrams: 2*|A∩B| / (|A|+|B|).
func ngramDice(a, b string) float64 {
	ga, gb := stringnorm.Bigrams(a), stringnorm.Bigrams(b)
	if len(ga) == 0 && len(gb) == 0 {
		return 1
	}
	if len(ga) == 0 || len(gb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ga))
	for _, g := range ga {
		counts[g]++
	}

	shared := 0
	for _, g := range gb {
		if counts[g] > 0 {
			counts[g]--
			shared++
		}
	}

	return 2 * float64(shared) / float64(len(ga)+len(gb))
}

// lenRatio is min(|a|,|b|) / max(|a|,|b|), defined as 0 when both are
// empty.
func lenRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 0
	}
	if la == 0 || lb == 0 {
		return 0
	}
	lo, hi := la, lb
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(lo) / float64(hi)
}
