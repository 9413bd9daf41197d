// Package search builds and runs full-text queries over the indexed
// documents and renders the results.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"pkm-indexer/models"
)

// Backend executes a validated request. storage.Store satisfies it.
type Backend interface {
	Search(ctx context.Context, req Request, opts HeadlineOptions) ([]models.SearchResult, error)
}

// Service validates requests, runs them on a Backend and logs the outcome.
type Service struct {
	backend Backend
	opts    HeadlineOptions
	log     zerolog.Logger
}

func NewService(backend Backend, opts HeadlineOptions, log zerolog.Logger) *Service {
	return &Service{backend: backend, opts: opts, log: log}
}

// Search returns the ranked matches for req. Invalid input is rejected
// without touching the backend. No match is an empty, non-nil slice.
// Backend failures are logged in full and returned wrapping ErrSearchFailed.
func (s *Service) Search(ctx context.Context, req Request) ([]models.SearchResult, error) {
	log := s.log.With().
		Str("query", req.Query).
		Str("language", string(req.Language)).
		Int("limit", req.Limit).
		Logger()

	if err := req.Validate(); err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			log.Warn().Msg("Search query cannot be empty")
		} else {
			log.Error().Err(err).Msg("Rejected search request")
		}
		return nil, err
	}

	results, err := s.backend.Search(ctx, req, s.opts)
	if err != nil {
		log.Error().Err(err).Msg("Database error during search")
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	log.Info().Int("results", len(results)).Msg("Search completed")
	return results, nil
}
