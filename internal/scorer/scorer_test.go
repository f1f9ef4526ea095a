package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRange(t *testing.T) {
	pairs := [][2]string{
		{"Jean Dupond", "Jean Dupont"},
		{"", ""},
		{"a", ""},
		{"", "b"},
		{"Zola, Emile", "Emile Zola"},
		{"xyz", "abc"},
	}

	for _, p := range pairs {
		s := Score(p[0], p[1])
		for _, v := range []float64{s.Seq, s.Token, s.Prefix, s.Suffix, s.Ngram, s.LenRatio, s.Avg()} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestScoreIdenticalStrings(t *testing.T) {
	s := Score("Jean Dupont", "Jean Dupont")
	assert.Equal(t, 1.0, s.Seq)
	assert.Equal(t, 1.0, s.Token)
	assert.Equal(t, 1.0, s.Prefix)
	assert.Equal(t, 1.0, s.Suffix)
	assert.Equal(t, 1.0, s.Ngram)
	assert.Equal(t, 1.0, s.LenRatio)
	assert.Equal(t, 1.0, s.Avg())
}

func TestScoreNearMiss(t *testing.T) {
	near := Score("Jean Dupond", "Jean Dupont").Avg()
	far := Score("Jean Dupont", "Victor Hugo").Avg()

	// a single trailing-letter swap in the last token should score well
	// above an unrelated name, even though the affected token itself
	// contributes zero to the token-Jaccard and suffix metrics.
	assert.Greater(t, near, 0.5)
	assert.Less(t, near, 1.0)
	assert.Greater(t, near, far)
}

func TestScoreCompletelyDifferent(t *testing.T) {
	s := Score("Jean Dupont", "Victor Hugo")
	assert.Less(t, s.Avg(), 0.4)
}

func TestTokenJaccardOrderInvariant(t *testing.T) {
	a := Score("Jean Dupont", "Dupont Jean")
	// token metric is set-based and ignores order
	assert.Equal(t, 1.0, a.Token)
}

func TestPrefixSuffixMetrics(t *testing.T) {
	s := Score("martin", "martinez")
	assert.Greater(t, s.Prefix, 0.5)
	assert.Less(t, s.Suffix, 0.5)
}

func TestLenRatioBothEmpty(t *testing.T) {
	s := Score("", "")
	assert.Equal(t, 0.0, s.LenRatio)
}

func TestVectorOrderMatchesMetricKeys(t *testing.T) {
	s := Score("jean dupont", "jean dupont")
	v := s.Vector()
	assert.Equal(t, [6]string{"seq", "token", "prefix", "suffix", "ngram", "lenratio"}, MetricKeys)
	assert.Len(t, v, 6)
}
