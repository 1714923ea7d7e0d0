package driven

import "context"

// Extractor converts an uploaded file into plain text.
type Extractor interface {
	// Supports reports whether the extractor can handle the filename.
	Supports(filename string) bool

	// Extract returns the text content of the file data.
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}
