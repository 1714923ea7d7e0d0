package mcp

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
)

func newTestServer(t *testing.T, docs *mockDocumentService, search *mockSearchService) *Server {
	t.Helper()
	if docs == nil {
		docs = &mockDocumentService{}
	}
	if search == nil {
		search = &mockSearchService{}
	}
	s, err := NewServer(&Ports{Document: docs, Search: search})
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresPorts(t *testing.T) {
	_, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.ErrorIs(t, err, ErrMissingDocumentService)

	_, err = NewServer(&Ports{Document: &mockDocumentService{}})
	require.ErrorIs(t, err, ErrMissingSearchService)
}

func TestUploadDocument_WithFileData(t *testing.T) {
	docs := &mockDocumentService{
		uploadResult: &driving.UploadResult{
			Document:      domain.Document{ID: "doc-1", Filename: "notes.txt"},
			ChunksCreated: 3,
			TotalChunks:   3,
		},
	}
	s := newTestServer(t, docs, nil)

	result, out, err := s.handleUploadDocument(context.Background(), nil, UploadInput{
		FileData:         base64.StdEncoding.EncodeToString([]byte("hello world")),
		OriginalFilename: "notes.txt",
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "doc-1", out.DocumentID)
	assert.Equal(t, 3, out.ChunksCreated)
	assert.Equal(t, []byte("hello world"), docs.lastSource.Data)
	assert.Equal(t, "notes.txt", docs.lastSource.Filename)
}

func TestUploadDocument_BothSourcesIsToolError(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, _, err := s.handleUploadDocument(context.Background(), nil, UploadInput{
		FilePath:         "/tmp/a.txt",
		FileData:         base64.StdEncoding.EncodeToString([]byte("x")),
		OriginalFilename: "a.txt",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Error:")
}

func TestUploadDocument_NeitherSourceIsToolError(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, _, err := s.handleUploadDocument(context.Background(), nil, UploadInput{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestUploadDocument_BadBase64IsToolError(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, _, err := s.handleUploadDocument(context.Background(), nil, UploadInput{
		FileData:         "!!not-base64!!",
		OriginalFilename: "a.txt",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestSearchChunks_DefaultsOmittedMatchCount(t *testing.T) {
	search := &mockSearchService{
		matches: []domain.ChunkMatch{
			{DocumentID: "doc-1", Filename: "notes.txt", Content: "hit", ChunkIndex: 0, Similarity: 0.92},
		},
	}
	s := newTestServer(t, nil, search)

	result, out, err := s.handleSearchChunks(context.Background(), nil, SearchInput{Query: "hello"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, domain.DefaultMatchCount, search.lastCount)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "notes.txt", out.Results[0].Filename)
}

func TestSearchChunks_ExplicitZeroIsToolError(t *testing.T) {
	search := &mockSearchService{err: domain.ErrInvalidInput}
	s := newTestServer(t, nil, search)

	zero := 0
	result, _, err := s.handleSearchChunks(context.Background(), nil, SearchInput{Query: "hello", MatchCount: &zero})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Equal(t, 0, search.lastCount)
}

func TestGetFiles(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	docs := &mockDocumentService{
		documents: []domain.Document{
			{ID: "doc-1", Filename: "a.txt", ContentType: domain.ContentTypeText, CreatedAt: created},
			{ID: "doc-2", Filename: "b.png", ContentType: domain.ContentTypeImage, CreatedAt: created},
		},
	}
	s := newTestServer(t, docs, nil)

	result, out, err := s.handleGetFiles(context.Background(), nil, GetFilesInput{})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "2026-08-01T10:00:00Z", out.Files[0].CreatedAt)
}

func TestGetDocument_ByFilename(t *testing.T) {
	docs := &mockDocumentService{
		document: &domain.Document{ID: "doc-1", Filename: "a.txt", Content: "body", ContentType: domain.ContentTypeText},
	}
	s := newTestServer(t, docs, nil)

	result, out, err := s.handleGetDocument(context.Background(), nil, DocumentRefInput{Filename: "a.txt"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "body", out.Content)
	assert.Equal(t, "a.txt", docs.lastRef.Filename)
}

func TestGetDocument_BothIdentifiersIsToolError(t *testing.T) {
	s := newTestServer(t, nil, nil)

	result, _, err := s.handleGetDocument(context.Background(), nil, DocumentRefInput{ID: "doc-1", Filename: "a.txt"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestDeleteDocument_NotFoundIsToolError(t *testing.T) {
	docs := &mockDocumentService{err: domain.ErrNotFound}
	s := newTestServer(t, docs, nil)

	result, _, err := s.handleDeleteDocument(context.Background(), nil, DocumentRefInput{ID: "missing"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestDeleteDocuments(t *testing.T) {
	docs := &mockDocumentService{deleted: 2}
	s := newTestServer(t, docs, nil)

	result, out, err := s.handleDeleteDocuments(context.Background(), nil, DeleteManyInput{DocumentIDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 2, out.Deleted)
	assert.Equal(t, []string{"a", "b"}, docs.lastIDs)
}

func TestDeleteDocuments_UpstreamFailureIsToolError(t *testing.T) {
	docs := &mockDocumentService{err: &domain.UpstreamError{Collaborator: "store", Err: assert.AnError}}
	s := newTestServer(t, docs, nil)

	result, _, err := s.handleDeleteDocuments(context.Background(), nil, DeleteManyInput{DocumentIDs: []string{"a"}})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "store")
}
