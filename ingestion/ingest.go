package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"pkm-indexer/storage"
)

var ErrNotDirectory = errors.New("not a directory")

// Writer persists extracted text. storage.Store satisfies it.
type Writer interface {
	InsertIfAbsent(ctx context.Context, path, ext, content string) (storage.InsertOutcome, error)
}

// Summary counts the outcome of every file seen during one run.
type Summary struct {
	Inserted    int
	Unsupported int
	Duplicates  int
	Errors      int
}

// Total is the number of files the walk produced.
func (s Summary) Total() int {
	return s.Inserted + s.Unsupported + s.Duplicates + s.Errors
}

// Processor drives Walk, the extractor and the writer over one directory.
type Processor struct {
	extractor Extractor
	writer    Writer
	log       zerolog.Logger
}

func NewProcessor(extractor Extractor, writer Writer, log zerolog.Logger) *Processor {
	return &Processor{extractor: extractor, writer: writer, log: log}
}

// Process ingests every supported file under root. Per-file failures are
// counted in the summary; only a bad root or a cancelled context is
// returned as an error.
func (p *Processor) Process(ctx context.Context, root string) (Summary, error) {
	var sum Summary

	info, err := os.Stat(root)
	if err != nil {
		return sum, fmt.Errorf("%w: %s: %v", ErrNotDirectory, root, err)
	}
	if !info.IsDir() {
		return sum, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	p.log.Info().Str("root", root).Msg("Starting processing directory")
	err = Walk(root, func(e Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.processEntry(ctx, e, &sum)
		return nil
	})

	p.logSummary(sum)
	if err != nil {
		return sum, fmt.Errorf("walking %s: %w", root, err)
	}
	return sum, nil
}

func (p *Processor) processEntry(ctx context.Context, e Entry, sum *Summary) {
	log := p.log.With().Str("path", e.Path).Logger()

	switch {
	case e.Err != nil:
		log.Error().Err(e.Err).Msg("Could not read entry")
		sum.Errors++
		return
	case !e.Supported:
		log.Debug().Str("extension", e.Extension).Msg("Skipping unsupported file type")
		sum.Unsupported++
		return
	}

	log.Info().Msg("Processing file")
	content, err := p.extractor.Extract(ctx, e.Path, e.Extension)
	if err != nil {
		log.Warn().Err(err).Msg("Could not extract text")
		sum.Errors++
		return
	}

	outcome, err := p.writer.InsertIfAbsent(ctx, e.Path, e.Extension, content)
	switch outcome {
	case storage.Inserted:
		log.Debug().Msg("Inserted")
		sum.Inserted++
	case storage.Duplicate:
		log.Info().Msg("Skipped duplicate file")
		sum.Duplicates++
	default:
		log.Error().Err(err).Msg("Error inserting data")
		sum.Errors++
	}
}

func (p *Processor) logSummary(sum Summary) {
	p.log.Info().
		Int("inserted", sum.Inserted).
		Int("unsupported", sum.Unsupported).
		Int("duplicates", sum.Duplicates).
		Int("errors", sum.Errors).
		Msg("Processing summary")
}
