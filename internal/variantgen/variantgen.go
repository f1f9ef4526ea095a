// Package variantgen generates ordered, de-duplicated candidate query
// strings from a folder's display name, for exact-match lookup against
// the authority store. Earlier variants are tried first.
package variantgen

import (
	"strings"

	"github.com/sortbook/authors/internal/stringnorm"
)

// Generate returns the ordered, de-duplicated list of variants for q:
// q itself, enclosure-stripped, numeric-token-stripped, initials-reordered,
// the "<tail> <head>" swap of a "Last, First" form, and the NormalizeName
// of every one of those.
func Generate(q string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	base := []string{
		q,
		stripEnclosures(q),
		removeNumericTokens(q),
		reorderInitials(q),
	}

	for _, v := range base {
		add(v)
	}

	if strings.Contains(q, ", ") {
		add(swapCommaForm(q))
	}

	// Every variant generated so far also contributes its normalized form,
	// appended after the raw forms so raw (lightly cleaned) forms are
	// tried first for exact-match lookup.
	normalizedOf := make([]string, len(out))
	copy(normalizedOf, out)
	for _, v := range normalizedOf {
		add(stringnorm.NormalizeName(v))
	}

	return out
}

// stripEnclosures removes [...] and (...) substrings, non-nested,
// best-effort on unbalanced input.
func stripEnclosures(q string) string {
	var b strings.Builder
	depth := 0
	for _, r := range q {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return collapseSpaces(b.String())
}

// removeNumericTokens drops whitespace-separated tokens consisting only
// of digits.
func removeNumericTokens(q string) string {
	fields := strings.Fields(q)
	kept := fields[:0:0]
	for _, f := range fields {
		if !isAllDigits(f) {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// reorderInitials moves every single-letter token to the end, preserving
// relative order, when at least one token of length >= 2 is also present.
func reorderInitials(q string) string {
	fields := strings.Fields(q)

	hasInitial, hasLong := false, false
	for _, f := range fields {
		if len([]rune(f)) == 1 {
			hasInitial = true
		} else {
			hasLong = true
		}
	}
	if !hasInitial || !hasLong {
		return ""
	}

	var long, initials []string
	for _, f := range fields {
		if len([]rune(f)) == 1 {
			initials = append(initials, f)
		} else {
			long = append(long, f)
		}
	}
	return strings.Join(append(long, initials...), " ")
}

// swapCommaForm turns "Last, First Middle" into "First Middle Last".
func swapCommaForm(q string) string {
	idx := strings.Index(q, ", ")
	if idx < 0 {
		return ""
	}
	head := strings.TrimSpace(q[:idx])
	tail := strings.TrimSpace(q[idx+2:])
	if head == "" || tail == "" {
		return ""
	}
	return tail + " " + head
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
