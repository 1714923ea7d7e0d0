// Package extract converts uploaded files into plain text for chunking
// and embedding.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure Mux implements the interface.
var _ driven.Extractor = (*Mux)(nil)

// Mux routes extraction to the first extractor that supports the file.
type Mux struct {
	extractors []driven.Extractor
}

// NewMux creates a mux over the given extractors, tried in order.
func NewMux(extractors ...driven.Extractor) *Mux {
	return &Mux{extractors: extractors}
}

// NewDefaultMux creates a mux with the built-in extractors.
func NewDefaultMux() *Mux {
	return NewMux(NewPDF(), NewDOCX(), NewHTML(), NewPlaintext())
}

// Supports reports whether any extractor can handle the filename.
func (m *Mux) Supports(filename string) bool {
	for _, e := range m.extractors {
		if e.Supports(filename) {
			return true
		}
	}
	return false
}

// Extract runs the first matching extractor.
func (m *Mux) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	for _, e := range m.extractors {
		if e.Supports(filename) {
			return e.Extract(ctx, filename, data)
		}
	}
	return "", fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, filepath.Ext(filename))
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
