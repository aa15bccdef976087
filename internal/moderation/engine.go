package moderation

import (
	"fmt"
	"sort"
	"strings"
)

// Decision is the binary outcome of an automatic evaluation. There is no
// warn state: any match rejects, and borderline cases go to manual review
// out of band.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// maxRationaleTerms caps how many matched terms the rationale spells out;
// the remainder is summarized as a count.
const maxRationaleTerms = 5

// Verdict is the immutable result of evaluating a listing's text.
// MatchedTerms carries every matched term in deterministic order; only
// the rationale truncates the list. A rejected verdict always has at
// least one matched term, and an accepted one has none.
type Verdict struct {
	Decision     Decision   `json:"decision"`
	Categories   []Category `json:"categories,omitempty"`
	MatchedTerms []string   `json:"matched_terms,omitempty"`
	Rationale    string     `json:"rationale"`
}

// Rejected reports whether the verdict rejects the listing.
func (v Verdict) Rejected() bool {
	return v.Decision == DecisionRejected
}

// Engine evaluates listing text against a fixed lexicon. It is stateless
// apart from the read-only lexicon and safe for concurrent use.
type Engine struct {
	lexicon *Lexicon
}

// NewEngine returns an Engine bound to the given lexicon.
func NewEngine(lex *Lexicon) *Engine {
	return &Engine{lexicon: lex}
}

// Evaluate runs the moderation pipeline over a listing's title and
// description and returns the verdict. Pure computation: persisting the
// verdict and transitioning the listing belong to the caller.
func (e *Engine) Evaluate(title, description string) Verdict {
	return e.EvaluateText(title + " " + description)
}

// EvaluateText evaluates a single block of free text. Used by Evaluate
// and by the ad-hoc text-check endpoint.
func (e *Engine) EvaluateText(text string) Verdict {
	matches := FindMatches(Normalize(text), e.lexicon)
	if len(matches) == 0 {
		return Verdict{
			Decision:  DecisionAccepted,
			Rationale: "Publicación aprobada automáticamente. No se detectaron problemas.",
		}
	}

	terms := make([]string, 0, len(matches))
	catSet := make(map[Category]struct{})
	for _, m := range matches {
		terms = append(terms, m.Term)
		catSet[m.Category] = struct{}{}
	}

	cats := make([]Category, 0, len(catSet))
	for c := range catSet {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	return Verdict{
		Decision:     DecisionRejected,
		Categories:   cats,
		MatchedTerms: terms,
		Rationale:    rejectionRationale(cats, terms),
	}
}

func rejectionRationale(cats []Category, terms []string) string {
	catNames := make([]string, len(cats))
	for i, c := range cats {
		catNames[i] = string(c)
	}

	shown := terms
	var overflow string
	if len(terms) > maxRationaleTerms {
		shown = terms[:maxRationaleTerms]
		overflow = fmt.Sprintf(" (+%d más)", len(terms)-maxRationaleTerms)
	}

	return fmt.Sprintf(
		"Contenido inapropiado detectado. Categorías: %s. Términos encontrados: %s%s",
		strings.Join(catNames, ", "),
		strings.Join(shown, ", "),
		overflow,
	)
}
