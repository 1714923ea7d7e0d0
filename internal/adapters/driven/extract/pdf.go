package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure PDF implements the interface.
var _ driven.Extractor = (*PDF)(nil)

// PDF extracts text from PDF documents.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Supports reports whether the filename is a PDF.
func (p *PDF) Supports(filename string) bool {
	return hasExt(filename, ".pdf")
}

// Extract returns the text content of all pages, joined by blank lines.
func (p *PDF) Extract(_ context.Context, filename string, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, filename, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single damaged page should not sink the whole document.
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}

	content := strings.Join(pages, "\n\n")
	if content == "" {
		return "", fmt.Errorf("%w: %s contains no extractable text", domain.ErrInvalidInput, filename)
	}
	return content, nil
}
