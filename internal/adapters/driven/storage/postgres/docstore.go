package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// SaveDocument stores a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	var fileURL sql.NullString
	if doc.FileURL != "" {
		fileURL = sql.NullString{String: doc.FileURL, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, content, content_type, file_url, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, doc.ID, doc.Filename, doc.Content, doc.ContentType, fileURL, metadata, doc.CreatedAt)
	return upstream(err)
}

// SaveChunks stores chunks in one transaction.
func (s *Store) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return upstream(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, chunk_index, chunk_type, embedding)
		VALUES ($1, $2, $3, $4, $5, $6::vector)
	`)
	if err != nil {
		return upstream(err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		literal, err := encodeVectorLiteral(c.Embedding)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		chunkType := c.ChunkType
		if chunkType == "" {
			chunkType = domain.ContentTypeText
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Content, c.ChunkIndex, chunkType, literal); err != nil {
			return upstream(err)
		}
	}

	return upstream(tx.Commit())
}

// SaveRelationship records a directed edge; the unique triple makes
// duplicates no-ops.
func (s *Store) SaveRelationship(ctx context.Context, rel domain.DocumentRelationship) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_relationships (parent_document_id, child_document_id, relationship_type)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, rel.ParentDocumentID, rel.ChildDocumentID, rel.RelationshipType)
	return upstream(err)
}

// GetDocumentByID retrieves a document by id.
func (s *Store) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	return s.getDocument(ctx, "id = $1", id)
}

// GetDocumentByFilename retrieves the most recent document with the given
// filename.
func (s *Store) GetDocumentByFilename(ctx context.Context, filename string) (*domain.Document, error) {
	return s.getDocument(ctx, "filename = $1", filename)
}

func (s *Store) getDocument(ctx context.Context, where string, arg any) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, content, content_type, file_url, metadata, created_at
		FROM documents
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT 1
	`, arg)

	var (
		doc      domain.Document
		fileURL  sql.NullString
		metadata []byte
	)
	err := row.Scan(&doc.ID, &doc.Filename, &doc.Content, &doc.ContentType, &fileURL, &metadata, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, upstream(err)
	}

	doc.FileURL = fileURL.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	return &doc, nil
}

// ListDocuments returns all documents, newest first, without content.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, content_type, file_url, created_at
		FROM documents
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, upstream(err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var (
			doc     domain.Document
			fileURL sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.ContentType, &fileURL, &doc.CreatedAt); err != nil {
			return nil, upstream(err)
		}
		doc.FileURL = fileURL.String
		docs = append(docs, doc)
	}
	return docs, upstream(rows.Err())
}

// DeleteDocument removes a document; chunks and relationship edges cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return upstream(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return upstream(err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SearchChunks delegates similarity search to pgvector, ordered by cosine
// distance.
func (s *Store) SearchChunks(ctx context.Context, embedding []float32, matchCount int) ([]domain.ChunkMatch, error) {
	literal, err := encodeVectorLiteral(embedding)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.document_id, d.filename, c.content, c.chunk_index,
		       1 - (c.embedding <=> $1::vector) AS similarity
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.embedding <=> $1::vector
		LIMIT $2
	`, literal, matchCount)
	if err != nil {
		return nil, upstream(err)
	}
	defer rows.Close()

	var matches []domain.ChunkMatch
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.DocumentID, &m.Filename, &m.Content, &m.ChunkIndex, &m.Similarity); err != nil {
			return nil, upstream(err)
		}
		matches = append(matches, m)
	}
	return matches, upstream(rows.Err())
}
