package driven

import "context"

// VisionService produces a text description of an image, used as the
// searchable content for image documents.
type VisionService interface {
	// Describe returns a prose description of the image data.
	Describe(ctx context.Context, data []byte, mimeType string) (string, error)

	// Close releases resources.
	Close() error
}
