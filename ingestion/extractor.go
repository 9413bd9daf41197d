package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
)

// Extraction failures. Every one of them means "skip this file and count
// it as an error"; none of them ends a run.
var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrProtected   = errors.New("password-protected document")
	ErrMalformed   = errors.New("malformed document")
	ErrUnreadable  = errors.New("unreadable file")
)

// Extractor turns a file into plain text. An empty string is a valid
// result; failure is always reported through the error.
type Extractor interface {
	Extract(ctx context.Context, path, ext string) (string, error)
}

// Dispatcher routes a file to the extractor registered for its extension.
type Dispatcher struct {
	byExt map[string]Extractor
}

// NewDispatcher returns the default extractor set: .txt and .md are read
// as text, .pdf is parsed.
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	text := NewTextExtractor(log)
	return &Dispatcher{byExt: map[string]Extractor{
		".txt": text,
		".md":  text,
		".pdf": NewPDFExtractor(log),
	}}
}

// Register sets the extractor for ext, replacing any existing one.
func (d *Dispatcher) Register(ext string, e Extractor) {
	d.byExt[strings.ToLower(ext)] = e
}

func (d *Dispatcher) Extract(ctx context.Context, path, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e, ok := d.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	text, err := e.Extract(ctx, path, ext)
	if err != nil {
		return "", err
	}
	// PostgreSQL text columns cannot hold NUL.
	return strings.ReplaceAll(text, "\x00", ""), nil
}

// TextExtractor reads .txt and .md files. Content that is not valid UTF-8
// is decoded as ISO-8859-1, which accepts any byte sequence.
type TextExtractor struct {
	log zerolog.Logger
}

func NewTextExtractor(log zerolog.Logger) *TextExtractor {
	return &TextExtractor{log: log}
}

func (e *TextExtractor) Extract(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	e.log.Warn().Str("path", path).Msg("UTF-8 decoding failed, trying latin-1")
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: latin-1 fallback: %v", ErrUnreadable, path, err)
	}
	return string(decoded), nil
}
