package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/kbridge/internal/adapters/driven/storage/memory"
	"github.com/kbridge/kbridge/internal/core/domain"
)

// queryEmbedder maps known texts to fixed vectors so similarity order is
// deterministic.
type queryEmbedder struct {
	vectors map[string][]float32
}

func (q *queryEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := q.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (q *queryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := q.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (q *queryEmbedder) Dimensions() int { return 3 }
func (q *queryEmbedder) Close() error    { return nil }

func seededSearchService(t *testing.T) *SearchService {
	t.Helper()

	store := memory.NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Filename: "cats.txt"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "cats purr", ChunkIndex: 0, Embedding: []float32{1, 0, 0}},
		{ID: "c2", DocumentID: "doc-1", Content: "dogs bark", ChunkIndex: 1, Embedding: []float32{0, 1, 0}},
	}))

	embedder := &queryEmbedder{vectors: map[string][]float32{
		"about cats": {1, 0, 0},
	}}
	return NewSearchService(store, embedder)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	svc := seededSearchService(t)

	matches, err := svc.Search(context.Background(), "about cats", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "cats purr", matches[0].Content)
	assert.Equal(t, "cats.txt", matches[0].Filename)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)
}

func TestSearch_LimitsToMatchCount(t *testing.T) {
	svc := seededSearchService(t)

	matches, err := svc.Search(context.Background(), "about cats", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := seededSearchService(t)

	_, err := svc.Search(context.Background(), "   ", 5)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_NonPositiveMatchCount(t *testing.T) {
	svc := seededSearchService(t)

	_, err := svc.Search(context.Background(), "about cats", 0)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Search(context.Background(), "about cats", -3)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
