package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(testLexicon(t))
}

func TestEvaluateCleanListingAccepted(t *testing.T) {
	eng := testEngine(t)

	v := eng.Evaluate("Vendo laptop excelente estado", "Poco uso, sin detalles")
	assert.Equal(t, DecisionAccepted, v.Decision)
	assert.False(t, v.Rejected())
	assert.Empty(t, v.Categories)
	assert.Empty(t, v.MatchedTerms)
	assert.Equal(t, "Publicación aprobada automáticamente. No se detectaron problemas.", v.Rationale)
}

func TestEvaluateWeaponsListingRejected(t *testing.T) {
	eng := testEngine(t)

	v := eng.Evaluate("Vendo arma", "pistola calibre 9mm sin papeles")
	require.True(t, v.Rejected())
	assert.Equal(t, []Category{CategoryWeapons}, v.Categories)
	assert.Contains(t, v.MatchedTerms, "arma")
	assert.Contains(t, v.MatchedTerms, "pistola")
	assert.Contains(t, v.Rationale, "weapons")
}

func TestEvaluateProfanityInTitleRejected(t *testing.T) {
	eng := testEngine(t)

	v := eng.Evaluate("CTM vendo bicicleta", "barata")
	require.True(t, v.Rejected())
	assert.Equal(t, []Category{CategoryProfanity}, v.Categories)
	assert.Equal(t, []string{"ctm"}, v.MatchedTerms)
}

func TestEvaluateExcludedWordAccepted(t *testing.T) {
	eng := testEngine(t)

	// "kayak" and "cocina" sit near prohibited terms in edit distance but
	// belong to the exclusion set.
	v := eng.Evaluate("Vendo kayak usado", "para dos personas")
	assert.Equal(t, DecisionAccepted, v.Decision)

	v = eng.Evaluate("Vendo cocina equipada", "cuatro platos, horno grande")
	assert.Equal(t, DecisionAccepted, v.Decision)
}

func TestEvaluateLeetspeakRejected(t *testing.T) {
	eng := testEngine(t)

	v := eng.Evaluate("Vendo c0ca1na pura", "90% pureza")
	require.True(t, v.Rejected())
	assert.Equal(t, []Category{CategoryDrugs}, v.Categories)
	assert.Equal(t, []string{"cocaina"}, v.MatchedTerms)
}

func TestEvaluateSpacedOutTermMatchesLikePlainSpelling(t *testing.T) {
	eng := testEngine(t)

	plain := eng.Evaluate("PUTO", "")
	spaced := eng.Evaluate("p u t o", "")
	require.True(t, plain.Rejected())
	assert.Equal(t, plain, spaced)
}

func TestEvaluateAggregatesCategories(t *testing.T) {
	eng := testEngine(t)

	v := eng.Evaluate("ctm vendo pistola", "con cocaina")
	require.True(t, v.Rejected())
	assert.Equal(t, []Category{CategoryDrugs, CategoryProfanity, CategoryWeapons}, v.Categories)
	assert.Equal(t, []string{"ctm", "cocaina", "pistola"}, v.MatchedTerms)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	eng := testEngine(t)

	first := eng.Evaluate("ctm vendo pistola robada", "con cocaina y extasis")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, eng.Evaluate("ctm vendo pistola robada", "con cocaina y extasis"))
	}
}

func TestEvaluateRationaleTruncatesLongTermLists(t *testing.T) {
	eng := testEngine(t)

	v := eng.Evaluate("puta puto ctm weon", "mierda droga cocaina")
	require.True(t, v.Rejected())
	require.Len(t, v.MatchedTerms, 7)
	assert.Contains(t, v.Rationale, "(+2 más)")
	// MatchedTerms is never truncated; only the rationale is.
	assert.Contains(t, v.MatchedTerms, "cocaina")
}

func TestEvaluateEmptyInputAccepted(t *testing.T) {
	eng := testEngine(t)

	v := eng.Evaluate("", "")
	assert.Equal(t, DecisionAccepted, v.Decision)
}

func TestEvaluateLongCleanText(t *testing.T) {
	eng := testEngine(t)

	desc := strings.Repeat("producto nuevo sellado envio inmediato ", 30)
	require.Greater(t, len(desc), 1000)

	v := eng.Evaluate("Vendo notebook", desc)
	assert.Equal(t, DecisionAccepted, v.Decision)
}

func TestRejectionSurvivesLexiconExtension(t *testing.T) {
	base, err := NewLexicon(map[Category][]string{
		CategoryWeapons: {"pistola"},
	}, nil)
	require.NoError(t, err)

	extended, err := NewLexicon(map[Category][]string{
		CategoryWeapons: {"pistola", "revolver"},
		CategoryDrugs:   {"cocaina"},
	}, nil)
	require.NoError(t, err)

	text := "vendo pistola nueva"
	require.True(t, NewEngine(base).EvaluateText(text).Rejected())
	assert.True(t, NewEngine(extended).EvaluateText(text).Rejected())
}
