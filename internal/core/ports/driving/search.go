package driving

import (
	"context"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// SearchService performs vector-similarity search over chunks.
type SearchService interface {
	// Search embeds the query and returns the matchCount closest chunks.
	// matchCount must be positive.
	Search(ctx context.Context, query string, matchCount int) ([]domain.ChunkMatch, error)
}
