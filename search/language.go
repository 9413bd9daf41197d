package search

import (
	"errors"
	"fmt"
	"strings"

	"pkm-indexer/models"
)

// Language selects the text search configuration used for a query.
type Language string

const (
	English Language = "english" // primary
	Russian Language = "russian" // secondary
	Both    Language = "both"    // english and russian, ranks summed
	Simple  Language = "simple"  // no stemming, language-agnostic
)

// Text search configurations created by the setup script.
const (
	ConfigEnglish = "public.fts_english_unaccent"
	ConfigRussian = "public.fts_russian_unaccent"
	ConfigSimple  = "pg_catalog.simple"
)

var ErrInvalidLanguage = errors.New("invalid language")

// Languages lists the selectors in display order.
var Languages = []Language{English, Russian, Both, Simple}

var aliases = map[string]Language{
	"primary":   English,
	"secondary": Russian,
	"combined":  Both,
	"agnostic":  Simple,
}

// ParseLanguage accepts a selector name or one of the aliases primary,
// secondary, combined and agnostic.
func ParseLanguage(s string) (Language, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if l, ok := aliases[name]; ok {
		return l, nil
	}
	l := Language(name)
	if _, ok := profiles[l]; !ok {
		return "", fmt.Errorf("%w: %q (choose from %s)", ErrInvalidLanguage, s, LanguageList())
	}
	return l, nil
}

// LanguageList renders the selectors as "english/russian/both/simple".
func LanguageList() string {
	names := make([]string, len(Languages))
	for i, l := range Languages {
		names[i] = string(l)
	}
	return strings.Join(names, "/")
}

// Valid reports whether l has a search profile.
func (l Language) Valid() bool {
	_, ok := profiles[l]
	return ok
}

type combineStrategy int

const (
	single combineStrategy = iota
	sum
)

// term pairs a derived tsvector column with the configuration that
// produced it.
type term struct {
	column string
	config string
}

type profile struct {
	terms   []term
	combine combineStrategy
}

var (
	termEnglish = term{column: models.ColumnTSVEnglish, config: ConfigEnglish}
	termRussian = term{column: models.ColumnTSVRussian, config: ConfigRussian}
	termSimple  = term{column: models.ColumnTSVSimple, config: ConfigSimple}
)

// profiles drives BuildQuery. The first term of a profile supplies the
// headline configuration.
var profiles = map[Language]profile{
	English: {terms: []term{termEnglish}, combine: single},
	Russian: {terms: []term{termRussian}, combine: single},
	Simple:  {terms: []term{termSimple}, combine: single},
	Both:    {terms: []term{termEnglish, termRussian}, combine: sum},
}
