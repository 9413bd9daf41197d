// Package storage owns the extracted_files table: connection management,
// schema creation, deduplicating inserts and search execution.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"pkm-indexer/config"
	"pkm-indexer/models"
	"pkm-indexer/search"
)

var (
	ErrConnect          = errors.New("database connection failed")
	ErrSchema           = errors.New("schema setup failed")
	ErrSetupUnsupported = errors.New("setup script is only supported on postgres")
)

// InsertOutcome is the result of InsertIfAbsent.
type InsertOutcome int

const (
	Failed InsertOutcome = iota
	Inserted
	Duplicate
)

func (o InsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Store is the record store shared by the ingestion and search commands.
type Store interface {
	// EnsureSchema creates the table if it does not exist.
	EnsureSchema(ctx context.Context) error
	// InsertIfAbsent adds a record unless one with the same path exists.
	// A database error yields (Failed, err) and leaves the store usable.
	InsertIfAbsent(ctx context.Context, path, ext, content string) (InsertOutcome, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit int) ([]models.Document, error)
	Search(ctx context.Context, req search.Request, opts search.HeadlineOptions) ([]models.SearchResult, error)
	// RunSetupScript executes a multi-statement script in one transaction.
	RunSetupScript(ctx context.Context, script string) error
	Close() error
}

// Open connects to the database selected by cfg.Database.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, log)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrConnect, cfg.Driver)
	}
}
