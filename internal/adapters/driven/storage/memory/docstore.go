// Package memory provides in-memory driven-port implementations for testing.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Similarity search ranks by dot product over stored embeddings, which is
// equivalent to cosine order for normalised vectors.
type DocumentStore struct {
	mu            sync.RWMutex
	documents     map[string]domain.Document
	chunks        map[string][]domain.Chunk
	relationships map[domain.DocumentRelationship]struct{}
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:     make(map[string]domain.Document),
		chunks:        make(map[string][]domain.Chunk),
		relationships: make(map[domain.DocumentRelationship]struct{}),
	}
}

// SaveDocument stores a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores chunks grouped by their document.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.DocumentID] = append(s.chunks[c.DocumentID], c)
	}
	return nil
}

// SaveRelationship records an edge; duplicates are no-ops.
func (s *DocumentStore) SaveRelationship(_ context.Context, rel domain.DocumentRelationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relationships[rel] = struct{}{}
	return nil
}

// GetDocumentByID retrieves a document by id.
func (s *DocumentStore) GetDocumentByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByFilename retrieves a document by filename.
func (s *DocumentStore) GetDocumentByFilename(_ context.Context, filename string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.Filename == filename {
			d := doc
			return &d, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListDocuments returns all documents, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		doc.Content = ""
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// DeleteDocument removes a document, its chunks and its edges.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	for rel := range s.relationships {
		if rel.ParentDocumentID == id || rel.ChildDocumentID == id {
			delete(s.relationships, rel)
		}
	}
	return nil
}

// SearchChunks returns the matchCount chunks with the highest dot product
// against the query embedding.
func (s *DocumentStore) SearchChunks(_ context.Context, embedding []float32, matchCount int) ([]domain.ChunkMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []domain.ChunkMatch
	for docID, chunks := range s.chunks {
		doc := s.documents[docID]
		for _, c := range chunks {
			matches = append(matches, domain.ChunkMatch{
				DocumentID: docID,
				Filename:   doc.Filename,
				Content:    c.Content,
				ChunkIndex: c.ChunkIndex,
				Similarity: dot(embedding, c.Embedding),
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > matchCount {
		matches = matches[:matchCount]
	}
	return matches, nil
}

// Close is a no-op.
func (s *DocumentStore) Close() error {
	return nil
}

// ChunkCount returns the number of stored chunks for a document.
func (s *DocumentStore) ChunkCount(documentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[documentID])
}

// HasRelationship reports whether the edge is stored.
func (s *DocumentStore) HasRelationship(rel domain.DocumentRelationship) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.relationships[rel]
	return ok
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
