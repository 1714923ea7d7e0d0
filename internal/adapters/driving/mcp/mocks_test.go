package mcp

import (
	"context"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	uploadResult *driving.UploadResult
	documents    []domain.Document
	document     *domain.Document
	deleted      int
	err          error

	lastSource driving.UploadSource
	lastRef    driving.DocumentRef
	lastIDs    []string
}

func (m *mockDocumentService) UploadDocument(_ context.Context, src driving.UploadSource) (*driving.UploadResult, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	m.lastSource = src
	return m.uploadResult, m.err
}

func (m *mockDocumentService) UploadImage(_ context.Context, src driving.UploadSource) (*driving.UploadResult, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	m.lastSource = src
	return m.uploadResult, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, ref driving.DocumentRef) (*domain.Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	m.lastRef = ref
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, ref driving.DocumentRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	m.lastRef = ref
	return m.err
}

func (m *mockDocumentService) DeleteMany(_ context.Context, ids []string) (int, error) {
	m.lastIDs = ids
	return m.deleted, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	matches []domain.ChunkMatch
	err     error

	lastQuery string
	lastCount int
}

func (m *mockSearchService) Search(_ context.Context, query string, matchCount int) ([]domain.ChunkMatch, error) {
	m.lastQuery = query
	m.lastCount = matchCount
	return m.matches, m.err
}
