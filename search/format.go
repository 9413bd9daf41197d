package search

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"pkm-indexer/models"
)

var flatten = strings.NewReplacer("\r", "", "\n", " ", "\t", " ")

// IsInvalidInput reports whether err rejects the request itself rather
// than a failed search.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrInvalidLanguage) ||
		errors.Is(err, ErrInvalidLimit)
}

// Format prints results for a terminal. Invalid input prints the
// no-results line with the reason; any other err prints the generic
// failure line, details are expected in the log.
func Format(w io.Writer, results []models.SearchResult, err error) {
	switch {
	case IsInvalidInput(err):
		fmt.Fprintf(w, "\n--- No results found. Invalid input: %v ---\n", err)
		fmt.Fprintln(w)
	case err != nil:
		fmt.Fprintln(w, "\n--- An error occurred during the search. Check logs. ---")
		fmt.Fprintln(w)
	case len(results) == 0:
		fmt.Fprintln(w, "\n--- No results found. ---")
		fmt.Fprintln(w)
	default:
		fmt.Fprintln(w, "\n--- Search Results ---")
		for i, r := range results {
			fmt.Fprintf(w, "%d. Path: %s (Rank: %.4f)\n", i+1, r.FilePath, r.Rank)
			fmt.Fprintf(w, "   Context: ...%s...\n", flatten.Replace(r.Headline))
		}
		fmt.Fprintln(w, "--------------------")
		fmt.Fprintln(w)
	}
}
