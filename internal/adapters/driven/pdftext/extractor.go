// Package pdftext extracts per-page text from PDFs using the pure-Go
// ledongthuc/pdf reader. Extraction is best-effort: scanned or oddly
// encoded pages yield empty strings and the pipeline substitutes a
// placeholder.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docsage-labs/docsage-cli/internal/core/ports/driven"
	"github.com/docsage-labs/docsage-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads per-page plain text from PDF files.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages returns one string per physical page, in page order.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	texts := make([]string, 0, numPages)
	for n := 1; n <= numPages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts = append(texts, e.pageText(reader, n, path))
	}
	return texts, nil
}

// pageText extracts one page's text, recovering from the panics the pdf
// library throws on malformed content streams.
func (e *Extractor) pageText(reader *pdf.Reader, n int, path string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("Text extraction panicked on page %d of %s: %v", n, path, r)
			text = ""
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		logger.Debug("Text extraction failed on page %d of %s: %v", n, path, err)
		return ""
	}
	return strings.TrimSpace(content)
}
