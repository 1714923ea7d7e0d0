package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure Plaintext implements the interface.
var _ driven.Extractor = (*Plaintext)(nil)

// Plaintext handles text-native formats that need no conversion beyond
// a UTF-8 validity check.
type Plaintext struct{}

// NewPlaintext creates a plaintext extractor.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// Supports reports whether the filename has a text extension.
func (p *Plaintext) Supports(filename string) bool {
	return hasExt(filename, ".txt", ".md", ".markdown", ".csv", ".json", ".yaml", ".yml", ".log")
}

// Extract returns the file content as a string.
func (p *Plaintext) Extract(_ context.Context, filename string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrInvalidInput, filename)
	}
	return strings.TrimSpace(string(data)), nil
}
