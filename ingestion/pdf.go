package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// pdfDocument is the slice of a parsed PDF the extractor needs.
type pdfDocument interface {
	NumPage() int
	// PageText returns the text of page n (1-based). ok is false for
	// pages the document lists but does not define.
	PageText(n int) (text string, ok bool, err error)
	Close() error
}

// PDFExtractor extracts text page by page. Documents that cannot be opened
// with an empty password are rejected with ErrProtected.
type PDFExtractor struct {
	log  zerolog.Logger
	open func(path string) (pdfDocument, error)
}

func NewPDFExtractor(log zerolog.Logger) *PDFExtractor {
	return &PDFExtractor{log: log, open: openPDF}
}

func (e *PDFExtractor) Extract(ctx context.Context, path, _ string) (text string, err error) {
	// The parser panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %s: %v", ErrMalformed, path, r)
		}
	}()

	doc, err := e.open(path)
	if err != nil {
		if errors.Is(err, ErrProtected) {
			e.log.Warn().Str("path", path).Msg("Skipping password-protected PDF (without password)")
		}
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 1; n <= doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pageText, ok, err := doc.PageText(n)
		if err != nil {
			return "", fmt.Errorf("%w: %s: page %d: %v", ErrMalformed, path, n, err)
		}
		if ok {
			sb.WriteString(pageText)
		}
	}
	return sb.String(), nil
}

type ledongthucDoc struct {
	f *os.File
	r *pdf.Reader
}

func openPDF(path string) (pdfDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	// NewReader tries the empty password before giving up.
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		if errors.Is(err, pdf.ErrInvalidPassword) || strings.Contains(err.Error(), "encrypt") {
			return nil, fmt.Errorf("%w: %s: %v", ErrProtected, path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return &ledongthucDoc{f: f, r: r}, nil
}

func (d *ledongthucDoc) NumPage() int { return d.r.NumPage() }

func (d *ledongthucDoc) PageText(n int) (string, bool, error) {
	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", false, nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (d *ledongthucDoc) Close() error { return d.f.Close() }
