package storage

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pkm-indexer/search"
)

const (
	snippetBefore = 50
	snippetAfter  = 100
)

// termPattern matches any of terms, case-insensitively.
func termPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
}

// termDensity is the number of term occurrences per word of content.
func termDensity(content string, terms []string) float64 {
	words := len(strings.Fields(content))
	if words == 0 || len(terms) == 0 {
		return 0
	}
	hits := len(termPattern(terms).FindAllStringIndex(content, -1))
	return float64(hits) / float64(words)
}

// generateSnippet returns the content around the first match with every
// match wrapped in the configured selectors. With HighlightAll the whole
// content is returned.
func generateSnippet(content string, terms []string, opts search.HeadlineOptions) string {
	if len(terms) == 0 {
		return content
	}
	re := termPattern(terms)
	highlight := func(s string) string {
		return re.ReplaceAllStringFunc(s, func(m string) string {
			return opts.StartSel + m + opts.StopSel
		})
	}

	if opts.HighlightAll {
		return highlight(content)
	}

	loc := re.FindStringIndex(content)
	if loc == nil {
		return truncate(content, snippetBefore+snippetAfter)
	}

	start := max(loc[0]-snippetBefore, 0)
	end := min(loc[1]+snippetAfter, len(content))
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	snippet := highlight(content[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
