// Package stringnorm provides the Unicode-aware string normalization
// primitives shared by the fuzzy matcher and the display-name renamer:
// accent stripping, whitespace collapsing, tokenization, and bigram
// extraction. Every operation here is deterministic and pure.
package stringnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes Unicode combining marks (category Mn) after NFKD
// decomposition, following the same norm+runes.Remove chain used
// throughout the ecosystem for accent-insensitive matching.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// StripAccents decomposes s to compatibility form and drops combining
// marks, preserving case. "Émile" -> "Emile", "Zola, Émile" unchanged
// in structure but accent-free.
func StripAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// transform.String only fails on encoding errors from the
		// underlying Transformer; runes.Remove never does, so this
		// path is unreachable in practice. Fall back to the input.
		return s
	}
	return out
}

// NormalizeName decomposes s to compatibility form, drops combining
// marks, lowercases, replaces every character outside [a-z0-9\s-] with
// a space, collapses runs of whitespace, and trims. It is deterministic
// and idempotent: NormalizeName(NormalizeName(s)) == NormalizeName(s).
func NormalizeName(s string) string {
	decomposed := StripAccents(s)
	lowered := strings.ToLower(decomposed)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return collapseWhitespace(b.String())
}

// isNameRune reports whether r is allowed unescaped in a normalized
// name: ASCII lowercase letters, digits, whitespace, or hyphen.
func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-':
		return true
	case unicode.IsSpace(r):
		return true
	default:
		return false
	}
}

// collapseWhitespace replaces runs of whitespace with a single space
// and trims the result.
func collapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.TrimSpace(strings.Join(fields, " "))
}

// Tokens splits a normalized string on whitespace into an ordered
// token sequence.
func Tokens(s string) []string {
	normalized := NormalizeName(s)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// Bigrams returns adjacent 2-character windows over the normalized
// form of s, with spaces excluded from the window source. "jean
// dupont" -> "je","ea","an","nd","du","up","po","on","nt".
func Bigrams(s string) []string {
	normalized := strings.ReplaceAll(NormalizeName(s), " ", "")
	chars := []rune(normalized)
	if len(chars) < 2 {
		return nil
	}
	grams := make([]string, 0, len(chars)-1)
	for i := 0; i+1 < len(chars); i++ {
		grams = append(grams, string(chars[i:i+2]))
	}
	return grams
}
