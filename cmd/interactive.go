package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"pkm-indexer/search"
)

// prompter reads one line of input per call. io.EOF or
// liner.ErrPromptAborted ends the session.
type prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

type linePrompter struct {
	*liner.State
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	line, err := p.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		p.AppendHistory(line)
	}
	return line, err
}

var newPrompter = func() prompter {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &linePrompter{State: l}
}

func endOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted)
}

func runInteractive(ctx context.Context, out io.Writer, svc *search.Service, limit int) error {
	fmt.Fprintln(out, "\nEntering interactive search mode. Press Ctrl+C or Ctrl+D to exit.")
	fmt.Fprintf(out, "Using configurations: EN='%s', RU='%s', Simple='%s'\n",
		search.ConfigEnglish, search.ConfigRussian, search.ConfigSimple)

	p := newPrompter()
	defer p.Close()

	langPrompt := fmt.Sprintf("Enter language (%s) [%s]: ", search.LanguageList(), search.English)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		query, err := p.Prompt("Enter search query: ")
		if err != nil {
			if endOfInput(err) {
				break
			}
			return fmt.Errorf("reading query: %w", err)
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}

		input, err := p.Prompt(langPrompt)
		if err != nil {
			if endOfInput(err) {
				break
			}
			return fmt.Errorf("reading language: %w", err)
		}
		lang := search.English
		if input = strings.TrimSpace(input); input != "" {
			if l, err := search.ParseLanguage(input); err == nil {
				lang = l
			} else {
				fmt.Fprintf(out, "Invalid language '%s'. Defaulting to '%s'.\n", input, search.English)
			}
		}

		results, err := svc.Search(ctx, search.Request{Query: query, Language: lang, Limit: limit})
		search.Format(out, results, err)
	}

	fmt.Fprintln(out, "\nExiting interactive mode.")
	return nil
}
