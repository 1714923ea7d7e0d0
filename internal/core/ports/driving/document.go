package driving

import (
	"context"
	"fmt"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// UploadSource identifies the bytes to ingest. Exactly one of Path or Data
// must be supplied; Data requires Filename.
type UploadSource struct {
	// Path is a filesystem path to read. Only valid on platforms with
	// filesystem access.
	Path string

	// Data is the raw file content.
	Data []byte

	// Filename is the original filename accompanying Data.
	Filename string
}

// Validate enforces the exactly-one-of contract.
func (s UploadSource) Validate() error {
	hasPath := s.Path != ""
	hasData := len(s.Data) > 0
	switch {
	case hasPath && hasData:
		return fmt.Errorf("%w: supply either file_path or file_data, not both", domain.ErrInvalidInput)
	case !hasPath && !hasData:
		return fmt.Errorf("%w: file_path or file_data is required", domain.ErrInvalidInput)
	case hasData && s.Filename == "":
		return fmt.Errorf("%w: original_filename is required with file_data", domain.ErrInvalidInput)
	}
	return nil
}

// DocumentRef identifies a document by exactly one of id or filename.
// Supplying both is a validation error, not resolved by precedence.
type DocumentRef struct {
	ID       string
	Filename string
}

// Validate enforces the exactly-one-of contract.
func (r DocumentRef) Validate() error {
	switch {
	case r.ID != "" && r.Filename != "":
		return fmt.Errorf("%w: supply either id or filename, not both", domain.ErrInvalidInput)
	case r.ID == "" && r.Filename == "":
		return fmt.Errorf("%w: id or filename is required", domain.ErrInvalidInput)
	}
	return nil
}

// UploadResult reports an ingest outcome. ChunksCreated may be less than
// TotalChunks when individual embedding calls failed; callers can detect
// partial failure from the pair.
type UploadResult struct {
	Document      domain.Document
	ChunksCreated int
	TotalChunks   int
}

// DocumentService manages documents in the knowledge base.
type DocumentService interface {
	// UploadDocument ingests a text or PDF file: extract, chunk, embed,
	// persist.
	UploadDocument(ctx context.Context, src UploadSource) (*UploadResult, error)

	// UploadImage ingests an image: describe via the vision model, then
	// chunk and embed the description.
	UploadImage(ctx context.Context, src UploadSource) (*UploadResult, error)

	// List returns all documents, newest first, without content.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by exactly one of id or filename.
	Get(ctx context.Context, ref DocumentRef) (*domain.Document, error)

	// Delete removes a document by exactly one of id or filename.
	Delete(ctx context.Context, ref DocumentRef) error

	// DeleteMany removes the documents with the given ids and returns how
	// many were deleted. An empty list is a validation error, never a
	// delete-all.
	DeleteMany(ctx context.Context, ids []string) (int, error)
}
