package domain

import "time"

// Content types stored on a Document. PDFs are extracted to text at ingest
// time and stored as ContentTypeText.
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// RelationshipExtractedImage links a source PDF to an image it yielded.
const RelationshipExtractedImage = "extracted_image"

// Document represents one stored file in the knowledge base.
// The core never mutates documents; it only creates, reads and deletes them
// through the store.
type Document struct {
	// ID is the unique identifier (UUID).
	ID string

	// Filename is the original file name as uploaded.
	Filename string

	// Content is the extracted text. For images this is the generated
	// description, not pixel data.
	Content string

	// ContentType is ContentTypeText or ContentTypeImage.
	ContentType string

	// FileURL optionally points at the stored original file.
	FileURL string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Chunk is a bounded text fragment of a Document with an attached embedding.
// It is the unit of vector search. Chunks are cascade-deleted with their
// parent document.
type Chunk struct {
	// ID is the unique identifier (UUID).
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the text fragment.
	Content string

	// ChunkIndex is the ordinal position within the document.
	ChunkIndex int

	// ChunkType tags the fragment kind (currently always "text").
	ChunkType string

	// Embedding is the fixed-length vector for similarity search.
	// It may be nil for chunks whose embedding call failed; such chunks
	// are not persisted.
	Embedding []float32
}

// DocumentRelationship is a directed edge between two documents.
// The (parent, child, type) triple is unique.
type DocumentRelationship struct {
	ParentDocumentID string
	ChildDocumentID  string
	RelationshipType string
}
