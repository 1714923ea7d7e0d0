package driven

import (
	"context"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// DocumentStore persists documents, chunks and relationships.
// Backed by Postgres with pgvector.
type DocumentStore interface {
	// SaveDocument stores a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// SaveRelationship records a directed edge between two documents.
	// Saving an existing (parent, child, type) triple is a no-op.
	SaveRelationship(ctx context.Context, rel domain.DocumentRelationship) error

	// GetDocumentByID retrieves a document by id.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocumentByID(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByFilename retrieves a document by filename.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocumentByFilename(ctx context.Context, filename string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first, without content.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document, its chunks and its relationship
	// edges. Returns domain.ErrNotFound if it does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// SearchChunks returns the matchCount chunks closest to the query
	// embedding, ordered by similarity.
	SearchChunks(ctx context.Context, embedding []float32, matchCount int) ([]domain.ChunkMatch, error)

	// Close releases the underlying connection pool.
	Close() error
}
