package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLexicon(t *testing.T) *Lexicon {
	t.Helper()
	lex, err := DefaultLexicon()
	require.NoError(t, err)
	return lex
}

func matchedTerms(matches []Match) []string {
	terms := make([]string, len(matches))
	for i, m := range matches {
		terms[i] = m.Term
	}
	return terms
}

func TestFindMatchesExactWholeWord(t *testing.T) {
	lex := testLexicon(t)

	matches := FindMatches(Normalize("vendo pistola calibre 22"), lex)
	require.Len(t, matches, 1)
	assert.Equal(t, "pistola", matches[0].Term)
	assert.Equal(t, CategoryWeapons, matches[0].Category)
}

func TestFindMatchesNoSubstringInsideLongerWord(t *testing.T) {
	lex := testLexicon(t)

	// "computadora" contains "puta"; whole-word matching must not flag it.
	matches := FindMatches(Normalize("vendo computadora de escritorio"), lex)
	assert.Empty(t, matches)
}

func TestFindMatchesSplitAcrossTokens(t *testing.T) {
	lex := testLexicon(t)

	matches := FindMatches(Normalize("p u t o el que lo lea"), lex)
	assert.Contains(t, matchedTerms(matches), "puto")
}

func TestFindMatchesMultiWordPhrase(t *testing.T) {
	lex := testLexicon(t)

	matches := FindMatches(Normalize("vendo arma blanca de colección"), lex)
	terms := matchedTerms(matches)
	assert.Contains(t, terms, "arma blanca")
	// "arma" also matches as a standalone token.
	assert.Contains(t, terms, "arma")
}

func TestFindMatchesPhraseRequiresWordBoundaries(t *testing.T) {
	lex, err := NewLexicon(map[Category][]string{
		CategoryWeapons: {"arma blanca"},
	}, nil)
	require.NoError(t, err)

	// "desarma blancas" contains the phrase only mid-word.
	matches := FindMatches(Normalize("desarma blancas"), lex)
	assert.Empty(t, matches)
}

func TestFindMatchesFuzzyWithinTolerance(t *testing.T) {
	lex := testLexicon(t)

	// "pistolas" is one insertion away from "pistola" (len 7, tolerance 2).
	matches := FindMatches(Normalize("vendo pistolas usadas"), lex)
	assert.Contains(t, matchedTerms(matches), "pistola")

	// "drogas" is one insertion away from "droga" (len 5, tolerance 1).
	matches = FindMatches(Normalize("drogas naturales"), lex)
	assert.Contains(t, matchedTerms(matches), "droga")
}

func TestFindMatchesNoFuzzyForShortTerms(t *testing.T) {
	lex := testLexicon(t)

	// "pura" is one substitution from "puta", but terms under five
	// characters never run the fuzzy pass.
	matches := FindMatches(Normalize("miel pura de ulmo"), lex)
	assert.Empty(t, matches)
}

func TestFindMatchesLengthGate(t *testing.T) {
	lex, err := NewLexicon(map[Category][]string{
		CategoryDrugs: {"cocaina"},
	}, nil)
	require.NoError(t, err)

	// Token differs in length by 3; the +-2 gate skips the distance
	// computation entirely.
	matches := FindMatches("coca", lex)
	assert.Empty(t, matches)
}

func TestFindMatchesExclusionVetoesFuzzyOnly(t *testing.T) {
	lex := testLexicon(t)

	// "cocina" is edit distance 1 from "cocaina" but sits in the
	// exclusion set, so it can never fuzzy-match.
	matches := FindMatches(Normalize("vendo cocina a gas"), lex)
	assert.Empty(t, matches)

	// The veto does not protect exact occurrences of a prohibited term.
	matches = FindMatches(Normalize("vendo cocaina"), lex)
	assert.Contains(t, matchedTerms(matches), "cocaina")
}

func TestFindMatchesExclusionVetoDefaultSet(t *testing.T) {
	lex := testLexicon(t)

	// Every one of these is within tolerance of some prohibited term and
	// must stay clean: estufa~estafa, marca~marica, horno~porno,
	// gorra~zorra, huevos~huevon, granate~granada, resolver~revolver.
	clean := "vendo estufa a parafina con gorra horno granate marca huevos y debo resolver"
	matches := FindMatches(Normalize(clean), lex)
	assert.Empty(t, matchedTerms(matches))
}

func TestFindMatchesDeduplicatesByTerm(t *testing.T) {
	lex := testLexicon(t)

	matches := FindMatches(Normalize("pistola pistola pistolas"), lex)
	assert.Equal(t, []string{"pistola"}, matchedTerms(matches))
}

func TestFindMatchesDeterministicOrder(t *testing.T) {
	lex := testLexicon(t)

	text := Normalize("ctm vendo pistola y cocaina robado")
	first := FindMatches(text, lex)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FindMatches(text, lex))
	}
}

func TestFindMatchesEmptyInput(t *testing.T) {
	lex := testLexicon(t)
	assert.Empty(t, FindMatches("", lex))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"pistola", "pistola", 0},
		{"pistola", "pistolas", 1},
		{"cocina", "cocaina", 1},
		{"estufa", "estafa", 1},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestTolerance(t *testing.T) {
	assert.Equal(t, 0, tolerance(4))
	assert.Equal(t, 1, tolerance(5))
	assert.Equal(t, 1, tolerance(6))
	assert.Equal(t, 2, tolerance(7))
	assert.Equal(t, 2, tolerance(12))
}
