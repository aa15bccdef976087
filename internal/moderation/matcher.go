package moderation

import (
	"strings"
)

// Match is a single prohibited term found in a text.
type Match struct {
	Term     string
	Category Category
}

// FindMatches scans normalized text for prohibited terms.
//
// Single-word terms match whole tokens only, never substrings, so a term
// embedded in an unrelated longer word does not trigger; a term spelled
// out across consecutive tokens ("p u t o") does. Multi-word terms match
// as whitespace-bounded phrases over the token sequence. Terms of
// normalized length >= 5 additionally get a fuzzy pass: tokens within two
// characters of the term's length are compared by Levenshtein distance
// against an adaptive tolerance (0 for length <= 4, 1 for 5-6, 2 above).
// Tokens in the lexicon's exclusion set never fuzzy-match, regardless of
// distance. An exact hit short-circuits the fuzzy pass for that term, and
// results are deduplicated by term.
//
// Matching is not stemming-aware: inflected forms outside the tolerance
// are missed.
func FindMatches(normalizedText string, lex *Lexicon) []Match {
	tokens := strings.Fields(normalizedText)
	if len(tokens) == 0 {
		return nil
	}
	// Phrase containment is checked against the padded token join so that
	// multi-word terms only match on word boundaries.
	padded := " " + strings.Join(tokens, " ") + " "

	var matches []Match
	seen := make(map[string]struct{})

	for _, cat := range categoryOrder {
		for _, raw := range lex.Categories()[cat] {
			term := Normalize(raw)
			if term == "" {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}

			if matchExact(term, tokens, padded) || matchFuzzy(term, tokens, lex) {
				seen[term] = struct{}{}
				matches = append(matches, Match{Term: term, Category: cat})
			}
		}
	}

	return matches
}

func matchExact(term string, tokens []string, padded string) bool {
	if strings.ContainsRune(term, ' ') {
		return strings.Contains(padded, " "+term+" ")
	}
	for _, tok := range tokens {
		if tok == term {
			return true
		}
	}
	return matchSplit(term, tokens)
}

// matchSplit catches terms spread over several tokens ("p u t o"): a run
// of two or more consecutive tokens whose concatenation equals the term.
// Both window edges sit on token boundaries, so a term hiding inside a
// single longer word still does not match.
func matchSplit(term string, tokens []string) bool {
	for i := range tokens {
		if len(tokens[i]) >= len(term) {
			continue
		}
		var b strings.Builder
		b.WriteString(tokens[i])
		for j := i + 1; j < len(tokens) && b.Len() < len(term); j++ {
			b.WriteString(tokens[j])
			if b.Len() == len(term) && b.String() == term {
				return true
			}
		}
	}
	return false
}

func matchFuzzy(term string, tokens []string, lex *Lexicon) bool {
	if len(term) < 5 {
		return false
	}
	tol := tolerance(len(term))
	for _, tok := range tokens {
		if diff := len(tok) - len(term); diff > 2 || diff < -2 {
			continue
		}
		if lex.IsExcluded(tok) {
			continue
		}
		if levenshtein(tok, term) <= tol {
			return true
		}
	}
	return false
}

// tolerance is the maximum accepted edit distance for a term of the given
// normalized length.
func tolerance(length int) int {
	switch {
	case length <= 4:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}

// levenshtein computes the edit distance between a and b (unit-cost
// insertions, deletions and substitutions) using the two-row dynamic
// program. Inputs are short normalized tokens, so no banded early exit
// is attempted.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
