package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"pkm-indexer/config"
	"pkm-indexer/models"
	"pkm-indexer/search"
)

var sqliteDialect = dialect{
	name: config.DriverSQLite,
	createTable: `CREATE TABLE IF NOT EXISTS ` + ident(models.TableName) + ` (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT UNIQUE NOT NULL,
    file_extension TEXT NOT NULL,
    content TEXT,
    processed_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`,
	placeholder: questionPlaceholder,
}

// sqliteDriverName is go-sqlite3 with a unicode_lower function. SQLite's
// built-in lower() folds ASCII only, which would miss Cyrillic terms.
const sqliteDriverName = "sqlite3_pkm"

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// SQLiteStore is an embedded Store for local use without a server. It has
// no text search configurations: every language selector performs the
// same case-insensitive term match, ranked in Go.
type SQLiteStore struct {
	sqlStore
}

func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open(sqliteDriverName, path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	log.Info().Str("path", path).Msg("Opened SQLite database")
	return &SQLiteStore{sqlStore{db: db, dialect: sqliteDialect, log: log}}, nil
}

func (s *SQLiteStore) RunSetupScript(context.Context, string) error {
	return ErrSetupUnsupported
}

// Search requires every query term to occur in the content, like
// plainto_tsquery does, and ranks by term occurrences per word.
func (s *SQLiteStore) Search(ctx context.Context, req search.Request, opts search.HeadlineOptions) ([]models.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	terms := strings.Fields(strings.ToLower(req.Query))

	conds := make([]string, len(terms))
	args := make([]any, 0, len(terms)+len(models.SupportedExtensions))
	for i, term := range terms {
		conds[i] = fmt.Sprintf("instr(unicode_lower(COALESCE(%s, '')), ?) > 0", ident(models.ColumnContent))
		args = append(args, term)
	}
	marks, extArgs := extensionList(questionPlaceholder, 0)
	args = append(args, extArgs...)

	q := fmt.Sprintf("SELECT %s, COALESCE(%s, '') FROM %s WHERE %s AND %s IN (%s)",
		ident(models.ColumnPath), ident(models.ColumnContent), ident(models.TableName),
		strings.Join(conds, " AND "), ident(models.ColumnExtension), marks)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var path, content string
		if err := rows.Scan(&path, &content); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, models.SearchResult{
			FilePath: path,
			Rank:     termDensity(content, terms),
			Headline: generateSnippet(content, terms, opts),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank > results[j].Rank
	})
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}
