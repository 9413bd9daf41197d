package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"pkm-indexer/models"
)

// dialect holds the statements that differ between backends.
type dialect struct {
	name        string
	createTable string
	placeholder func(n int) string
}

// sqlStore implements the backend-neutral part of Store over database/sql.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	log     zerolog.Logger
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func dollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

func questionPlaceholder(int) string { return "?" }

func (s *sqlStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createTable); err != nil {
		return fmt.Errorf("%w: creating table %s: %v", ErrSchema, models.TableName, err)
	}
	s.log.Info().Str("table", models.TableName).Msg("Table checked/created successfully")
	return nil
}

func (s *sqlStore) insertSQL() string {
	p := s.dialect.placeholder
	return fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (%s, %s, %s) ON CONFLICT (%s) DO NOTHING",
		ident(models.TableName),
		ident(models.ColumnPath), ident(models.ColumnExtension), ident(models.ColumnContent),
		p(1), p(2), p(3),
		ident(models.ColumnPath))
}

// InsertIfAbsent relies on ON CONFLICT DO NOTHING, so two writers racing
// on the same path still produce a single row.
func (s *sqlStore) InsertIfAbsent(ctx context.Context, path, ext, content string) (InsertOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Failed, fmt.Errorf("inserting %s: begin: %w", path, err)
	}

	res, err := tx.ExecContext(ctx, s.insertSQL(), path, ext, content)
	if err != nil {
		s.rollback(tx, path)
		return Failed, fmt.Errorf("inserting %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.rollback(tx, path)
		return Failed, fmt.Errorf("inserting %s: rows affected: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return Failed, fmt.Errorf("inserting %s: commit: %w", path, err)
	}

	if n == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

func (s *sqlStore) rollback(tx *sql.Tx, path string) {
	if err := tx.Rollback(); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Rollback failed")
	}
}

func (s *sqlStore) Count(ctx context.Context) (int, error) {
	var n int
	q := "SELECT COUNT(*) FROM " + ident(models.TableName)
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

func (s *sqlStore) List(ctx context.Context, limit int) ([]models.Document, error) {
	q := fmt.Sprintf("SELECT id, %s, %s, COALESCE(%s, ''), %s FROM %s ORDER BY %s LIMIT %s",
		ident(models.ColumnPath), ident(models.ColumnExtension), ident(models.ColumnContent),
		ident(models.ColumnIndexedAt), ident(models.TableName), ident(models.ColumnPath),
		s.dialect.placeholder(1))

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.FilePath, &d.Extension, &d.Content, &d.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

func (s *sqlStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	if err == nil {
		s.log.Info().Msg("Database connection closed")
	}
	return err
}

// extensionList returns n placeholders starting at first, joined by commas,
// and the matching argument values.
func extensionList(p func(int) string, first int) (string, []any) {
	marks := make([]string, len(models.SupportedExtensions))
	args := make([]any, len(models.SupportedExtensions))
	for i, ext := range models.SupportedExtensions {
		marks[i] = p(first + i)
		args[i] = ext
	}
	return strings.Join(marks, ", "), args
}
