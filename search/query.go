package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"pkm-indexer/models"
)

var (
	ErrEmptyQuery      = errors.New("search query cannot be empty")
	ErrInvalidLimit    = errors.New("search limit must be positive")
	ErrInvalidHeadline = errors.New("invalid highlight options")
	ErrSearchFailed    = errors.New("search failed")
)

// Request is one search as entered by the user.
type Request struct {
	Query    string
	Language Language
	Limit    int
}

// Validate rejects a request before any statement is built.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if !r.Language.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, r.Language)
	}
	if r.Limit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, r.Limit)
	}
	return nil
}

// HeadlineOptions configures ts_headline.
type HeadlineOptions struct {
	StartSel     string
	StopSel      string
	MaxWords     int
	MinWords     int
	MaxFragments int
	HighlightAll bool
}

// DefaultHeadlineOptions wraps matches in *** and highlights the whole
// document.
func DefaultHeadlineOptions() HeadlineOptions {
	return HeadlineOptions{
		StartSel:     "***",
		StopSel:      "***",
		MaxWords:     35,
		MinWords:     15,
		MaxFragments: 1,
		HighlightAll: true,
	}
}

// Validate checks that the selectors can be quoted in the option string.
func (o HeadlineOptions) Validate() error {
	if o.StartSel == "" || o.StopSel == "" {
		return fmt.Errorf("%w: empty selector", ErrInvalidHeadline)
	}
	if strings.ContainsAny(o.StartSel+o.StopSel, "\"\x00") {
		return fmt.Errorf("%w: selectors must not contain double quotes", ErrInvalidHeadline)
	}
	return nil
}

// String renders the options in ts_headline syntax. The result is passed
// as a bound parameter.
func (o HeadlineOptions) String() string {
	highlightAll := "FALSE"
	if o.HighlightAll {
		highlightAll = "TRUE"
	}
	return fmt.Sprintf(`StartSel="%s", StopSel="%s", MaxFragments=%d, MaxWords=%d, MinWords=%d, HighlightAll=%s`,
		o.StartSel, o.StopSel, o.MaxFragments, o.MaxWords, o.MinWords, highlightAll)
}

// Statement is SQL text with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

type argList struct {
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(len(a.args))
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// BuildQuery builds the PostgreSQL full-text search statement for req.
// Identifiers come from models and the profile table only; every value
// is a bound parameter.
func BuildQuery(req Request, opts HeadlineOptions) (Statement, error) {
	if err := req.Validate(); err != nil {
		return Statement{}, err
	}
	if err := opts.Validate(); err != nil {
		return Statement{}, err
	}
	prof := profiles[req.Language]

	var a argList
	headlineConfig := a.add(prof.terms[0].config)
	headlineOpts := a.add(opts.String())
	queryText := a.add(req.Query)

	from := []string{ident(models.TableName)}
	ranks := make([]string, 0, len(prof.terms))
	matches := make([]string, 0, len(prof.terms))
	for i, t := range prof.terms {
		alias := fmt.Sprintf("query_%d", i)
		col := ident(t.column)
		from = append(from, fmt.Sprintf("plainto_tsquery(%s::regconfig, %s) %s", a.add(t.config), queryText, alias))
		matches = append(matches, fmt.Sprintf("%s @@ %s", alias, col))

		rank := fmt.Sprintf("ts_rank_cd(%s, %s)", col, alias)
		if prof.combine == sum {
			// A miss in one language contributes zero instead of excluding the row.
			rank = fmt.Sprintf("COALESCE(%s, 0)", rank)
		}
		ranks = append(ranks, rank)
	}

	exts := make([]string, len(models.SupportedExtensions))
	for i, ext := range models.SupportedExtensions {
		exts[i] = a.add(ext)
	}
	limit := a.add(req.Limit)

	var sb strings.Builder
	sb.WriteString("SELECT\n")
	fmt.Fprintf(&sb, "    %s,\n", ident(models.ColumnPath))
	fmt.Fprintf(&sb, "    %s AS rank,\n", strings.Join(ranks, " + "))
	fmt.Fprintf(&sb, "    ts_headline(%s::regconfig, %s, query_0, %s) AS headline\n",
		headlineConfig, ident(models.ColumnContent), headlineOpts)
	fmt.Fprintf(&sb, "FROM\n    %s\n", strings.Join(from, ",\n    "))
	fmt.Fprintf(&sb, "WHERE\n    (%s)\n", strings.Join(matches, " OR "))
	fmt.Fprintf(&sb, "    AND %s IN (%s)\n", ident(models.ColumnExtension), strings.Join(exts, ", "))
	sb.WriteString("ORDER BY rank DESC\n")
	fmt.Fprintf(&sb, "LIMIT %s", limit)

	return Statement{SQL: sb.String(), Args: a.args}, nil
}
