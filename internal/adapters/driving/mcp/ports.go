package mcp

import (
	"io"

	"github.com/kbridge/kbridge/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Document manages documents in the knowledge base.
	Document driving.DocumentService

	// Search performs vector-similarity search over chunks.
	Search driving.SearchService

	// Closers are released when the owning session's handle closes.
	// Per-session database pools and API clients go here.
	Closers []io.Closer
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
