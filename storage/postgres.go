package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"pkm-indexer/config"
	"pkm-indexer/models"
	"pkm-indexer/search"
)

var postgresDialect = dialect{
	name: config.DriverPostgres,
	createTable: `CREATE TABLE IF NOT EXISTS ` + ident(models.TableName) + ` (
    id SERIAL PRIMARY KEY,
    file_path TEXT UNIQUE NOT NULL,
    file_extension VARCHAR(10) NOT NULL,
    content TEXT,
    processed_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
)`,
	placeholder: dollarPlaceholder,
}

// PostgresStore is the Store used in production. Search runs on the
// derived tsvector columns created by the setup script.
type PostgresStore struct {
	sqlStore
}

// ConnString builds a postgres URL from cfg. Credentials are escaped.
func ConnString(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   "/" + cfg.Name,
	}
	return u.String()
}

// OpenPostgres opens a single-connection pool and verifies it. Server
// notices are logged, which is how the setup script reports its progress.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*PostgresStore, error) {
	connCfg, err := pgx.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	connCfg.RuntimeParams["client_min_messages"] = "notice"
	connCfg.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		log.Info().Str("severity", n.Severity).Msgf("DB Notice: %s", n.Message)
	}

	db := stdlib.OpenDB(*connCfg)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("Successfully connected to the database")
	return &PostgresStore{sqlStore{db: db, dialect: postgresDialect, log: log}}, nil
}

func (s *PostgresStore) RunSetupScript(ctx context.Context, script string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrSchema, err)
	}
	// No arguments: pgx sends the script over the simple protocol, so it
	// may hold several statements.
	if _, err := tx.ExecContext(ctx, script); err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrSchema, err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, req search.Request, opts search.HeadlineOptions) ([]models.SearchResult, error) {
	stmt, err := search.BuildQuery(req, opts)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("sql", stmt.SQL).Interface("args", stmt.Args).Msg("Executing search query")

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		s.logFailedQuery(stmt, err)
		return nil, err
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var (
			r        models.SearchResult
			headline sql.NullString
		)
		if err := rows.Scan(&r.FilePath, &r.Rank, &headline); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		r.Headline = headline.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		s.logFailedQuery(stmt, err)
		return nil, err
	}
	return results, nil
}

func (s *PostgresStore) logFailedQuery(stmt search.Statement, err error) {
	s.log.Error().Err(err).Str("sql", stmt.SQL).Interface("args", stmt.Args).Msg("Failed query")
}
