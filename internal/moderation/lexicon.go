package moderation

import (
	"fmt"
)

// Category classifies prohibited terms.
type Category string

const (
	CategoryProfanity       Category = "profanity"
	CategoryDrugs           Category = "drugs"
	CategoryWeapons         Category = "weapons"
	CategorySexual          Category = "sexual"
	CategoryFraud           Category = "fraud"
	CategoryForgedDocuments Category = "forged_documents"
	CategoryViolence        Category = "violence"
)

// categoryOrder fixes the iteration order of the matcher so that repeated
// evaluations of the same input produce identical verdicts.
var categoryOrder = []Category{
	CategoryProfanity,
	CategoryDrugs,
	CategoryWeapons,
	CategorySexual,
	CategoryFraud,
	CategoryForgedDocuments,
	CategoryViolence,
}

// Lexicon is the read-only dictionary the matcher works from: prohibited
// terms grouped by category, plus an exclusion set of benign words that
// must never be flagged by the fuzzy pass. Immutable after construction
// and safe for concurrent use.
type Lexicon struct {
	terms      map[Category][]string
	exclusions map[string]struct{}
}

// NewLexicon builds a Lexicon and verifies its construction-time
// invariant: a term may appear in at most one category. A violation is a
// configuration error and is reported before any evaluation can run.
func NewLexicon(terms map[Category][]string, exclusions []string) (*Lexicon, error) {
	seen := make(map[string]Category)
	for _, cat := range categoryOrder {
		for _, t := range terms[cat] {
			norm := Normalize(t)
			if norm == "" {
				return nil, fmt.Errorf("lexicon: term %q in category %s normalizes to empty", t, cat)
			}
			if prev, ok := seen[norm]; ok && prev != cat {
				return nil, fmt.Errorf("lexicon: term %q appears in categories %s and %s", norm, prev, cat)
			}
			seen[norm] = cat
		}
	}

	excl := make(map[string]struct{}, len(exclusions))
	for _, e := range exclusions {
		excl[Normalize(e)] = struct{}{}
	}

	return &Lexicon{terms: terms, exclusions: excl}, nil
}

// DefaultLexicon returns the built-in Spanish (Chilean) lexicon.
func DefaultLexicon() (*Lexicon, error) {
	return NewLexicon(defaultTerms, defaultExclusions)
}

// Categories returns the category -> terms mapping.
func (l *Lexicon) Categories() map[Category][]string {
	return l.terms
}

// Exclusions returns the normalized exclusion set.
func (l *Lexicon) Exclusions() map[string]struct{} {
	return l.exclusions
}

// IsExcluded reports whether a normalized token belongs to the exclusion
// set and must therefore never be treated as an approximate match.
func (l *Lexicon) IsExcluded(token string) bool {
	_, ok := l.exclusions[token]
	return ok
}

// defaultTerms is the prohibited-term dictionary, grouped by category.
// Entries are Chilean Spanish, stored pre-normalized (lower-case, no
// accents). Multi-word entries match as whitespace-bounded phrases.
var defaultTerms = map[Category][]string{
	CategoryProfanity: {
		"puta", "puto", "ctm", "conchetumare", "maricon", "marica",
		"weon", "culiao", "culiado", "aweonao", "huevon", "mierda",
		"pichula", "verga", "zorra", "flaite",
	},
	CategoryDrugs: {
		"droga", "cocaina", "marihuana", "extasis", "anfetamina",
		"farlopa", "perico", "ketamina", "cripy", "jale", "pasta base",
	},
	CategoryWeapons: {
		"pistola", "revolver", "fusil", "rifle", "escopeta", "arma",
		"municion", "granada", "explosivo", "dinamita", "metralleta",
		"subfusil", "arma blanca",
	},
	CategorySexual: {
		"porno", "pornografia", "xxx", "escort", "prostitucion",
		"prostituta", "pedofilia",
	},
	CategoryFraud: {
		"estafa", "robado", "choreo", "hackear", "hackeo", "clonado",
		"pirateado",
	},
	CategoryForgedDocuments: {
		"falsificado", "carnet falso", "licencia falsa",
		"documentos falsos", "titulo falso",
	},
	CategoryViolence: {
		"violacion", "secuestro", "sicario", "golpiza",
		"amenaza de muerte",
	},
}

// defaultExclusions lists benign words that sit within edit-distance
// tolerance of some prohibited term and would otherwise be flagged by the
// fuzzy pass: "cocina" is one insertion from "cocaina", "estufa" one
// substitution from "estafa", "marca" one insertion from "marica",
// "horno" one substitution from "porno", and so on. Exact occurrences of
// a prohibited term are never vetoed.
var defaultExclusions = []string{
	"kayak",
	"cocina", "cortina",
	"estufa",
	"escolta",
	"grada", "granate", "grande", "grandes", "granja",
	"resolver",
	"medicion",
	"vibracion",
	"perno", "horno",
	"verja",
	"gorra",
	"huevo", "huevos",
	"marca", "marron", "marisco", "mariana",
	"rosado",
}
