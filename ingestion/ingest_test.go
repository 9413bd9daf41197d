package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkm-indexer/search"
	"pkm-indexer/storage"
)

type fakeWriter struct {
	seen    map[string]string
	failFor map[string]bool
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{seen: map[string]string{}, failFor: map[string]bool{}}
}

func (w *fakeWriter) InsertIfAbsent(_ context.Context, path, _, content string) (storage.InsertOutcome, error) {
	if w.failFor[path] {
		return storage.Failed, fmt.Errorf("inserting %s: connection reset", path)
	}
	if _, ok := w.seen[path]; ok {
		return storage.Duplicate, nil
	}
	w.seen[path] = content
	return storage.Inserted, nil
}

func scenarioDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "a.txt", []byte("hello world"))
	writeFile(t, root, "b.pdf", encryptedPDF())
	writeFile(t, root, "c.md", []byte("hello md"))
	return root
}

func TestProcessor_Counts(t *testing.T) {
	root := scenarioDir(t)
	writeFile(t, root, "photo.jpg", []byte{0xff, 0xd8})
	writeFile(t, root, "nested/notes.TXT", []byte("upper-case extension"))
	writeFile(t, root, "nested/data.csv", []byte("a,b"))
	writeFile(t, root, "nested/report.pdf", buildPDF("quarterly report", ""))

	w := newFakeWriter()
	p := NewProcessor(NewDispatcher(zerolog.Nop()), w, zerolog.Nop())

	sum, err := p.Process(context.Background(), root)

	require.NoError(t, err)
	assert.Equal(t, Summary{Inserted: 4, Unsupported: 2, Duplicates: 0, Errors: 1}, sum)
	assert.Equal(t, 7, sum.Total())
	assert.Equal(t, "upper-case extension", w.seen[filepath.Join(root, "nested", "notes.TXT")])
	assert.Contains(t, w.seen[filepath.Join(root, "nested", "report.pdf")], "quarterly report")
	assert.NotContains(t, w.seen, filepath.Join(root, "b.pdf"))
	assert.NotContains(t, w.seen, filepath.Join(root, "photo.jpg"))
}

func TestProcessor_InsertFailureIsCountedNotFatal(t *testing.T) {
	root := scenarioDir(t)
	w := newFakeWriter()
	w.failFor[filepath.Join(root, "a.txt")] = true

	sum, err := NewProcessor(NewDispatcher(zerolog.Nop()), w, zerolog.Nop()).Process(context.Background(), root)

	require.NoError(t, err)
	assert.Equal(t, Summary{Inserted: 1, Errors: 2}, sum)
	assert.Contains(t, w.seen, filepath.Join(root, "c.md"))
}

func TestProcessor_RootMustBeDirectory(t *testing.T) {
	root := scenarioDir(t)
	p := NewProcessor(NewDispatcher(zerolog.Nop()), newFakeWriter(), zerolog.Nop())

	_, err := p.Process(context.Background(), filepath.Join(root, "a.txt"))
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = p.Process(context.Background(), filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProcessor(NewDispatcher(zerolog.Nop()), newFakeWriter(), zerolog.Nop()).Process(ctx, scenarioDir(t))

	assert.True(t, errors.Is(err, context.Canceled))
}

// TestIngestAndSearch_SQLite runs the full pipeline against an embedded
// store: first run, search, then an unchanged second run.
func TestIngestAndSearch_SQLite(t *testing.T) {
	ctx := context.Background()
	root := scenarioDir(t)

	store, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "pkm.db"), zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))

	p := NewProcessor(NewDispatcher(zerolog.Nop()), store, zerolog.Nop())

	first, err := p.Process(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, Summary{Inserted: 2, Errors: 1}, first)

	docs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, filepath.Join(root, "a.txt"), docs[0].FilePath)
	assert.Equal(t, filepath.Join(root, "c.md"), docs[1].FilePath)

	svc := search.NewService(store, search.DefaultHeadlineOptions(), zerolog.Nop())
	results, err := svc.Search(ctx, search.Request{Query: "hello", Language: search.Simple, Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	paths := []string{results[0].FilePath, results[1].FilePath}
	assert.ElementsMatch(t, []string{filepath.Join(root, "a.txt"), filepath.Join(root, "c.md")}, paths)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Rank, 0.0)
		assert.Contains(t, r.Headline, "***hello***")
	}

	second, err := p.Process(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, Summary{Duplicates: 2, Errors: 1}, second)
	assert.Equal(t, first.Inserted, second.Duplicates)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
