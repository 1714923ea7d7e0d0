package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
	"github.com/kbridge/kbridge/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService embeds queries and delegates similarity search to the store.
type SearchService struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
}

// NewSearchService creates a new search service.
func NewSearchService(store driven.DocumentStore, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		store:    store,
		embedder: embedder,
	}
}

// Search embeds the query and returns the matchCount closest chunks.
// An explicit non-positive matchCount is a caller bug, not a request for an
// empty result set.
func (s *SearchService) Search(ctx context.Context, query string, matchCount int) ([]domain.ChunkMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if matchCount <= 0 {
		return nil, fmt.Errorf("%w: match_count must be positive", domain.ErrInvalidInput)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := s.store.SearchChunks(ctx, embedding, matchCount)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	logger.Debug("search %q returned %d matches", query, len(matches))
	return matches, nil
}
