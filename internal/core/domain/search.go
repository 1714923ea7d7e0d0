package domain

// DefaultMatchCount is the number of chunks returned when the caller does
// not specify one.
const DefaultMatchCount = 5

// ChunkMatch is a single vector-similarity search hit.
type ChunkMatch struct {
	// DocumentID is the owning document.
	DocumentID string

	// Filename is the owning document's filename, for display.
	Filename string

	// Content is the matched chunk text.
	Content string

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int

	// Similarity is the cosine similarity score (0-1, higher is closer).
	Similarity float64
}
