package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/kbridge/internal/core/domain"
)

func TestDocumentStore_SaveAndGet(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", Filename: "notes.txt", Content: "hello"}
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocumentByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", got.Filename)

	got, err = s.GetDocumentByFilename(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
}

func TestDocumentStore_GetMissing(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, err := s.GetDocumentByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.GetDocumentByFilename(ctx, "nope.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "a", Content: "x", CreatedAt: older}))
	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "b", Content: "y", CreatedAt: newer}))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	// Listing omits content.
	assert.Empty(t, docs[0].Content)
}

func TestDocumentStore_DeleteCascadesChunks(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "doc-1"}))
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "a"},
		{ID: "c2", DocumentID: "doc-1", Content: "b"},
	}))
	rel := domain.DocumentRelationship{
		ParentDocumentID: "doc-1", ChildDocumentID: "doc-2",
		RelationshipType: domain.RelationshipExtractedImage,
	}
	require.NoError(t, s.SaveRelationship(ctx, rel))

	require.NoError(t, s.DeleteDocument(ctx, "doc-1"))
	assert.Equal(t, 0, s.ChunkCount("doc-1"))
	assert.False(t, s.HasRelationship(rel))

	assert.ErrorIs(t, s.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
}

func TestDocumentStore_SearchChunksRanksAndLimits(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, &domain.Document{ID: "doc-1", Filename: "f.txt"}))
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "far", ChunkIndex: 0, Embedding: []float32{0, 1}},
		{ID: "c2", DocumentID: "doc-1", Content: "near", ChunkIndex: 1, Embedding: []float32{1, 0}},
		{ID: "c3", DocumentID: "doc-1", Content: "mid", ChunkIndex: 2, Embedding: []float32{0.5, 0.5}},
	}))

	matches, err := s.SearchChunks(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "near", matches[0].Content)
	assert.Equal(t, "mid", matches[1].Content)
	assert.Equal(t, "f.txt", matches[0].Filename)
}
