package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
	"github.com/kbridge/kbridge/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// Image extensions accepted by UploadImage.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// DocumentService ingests, lists and deletes documents.
type DocumentService struct {
	store     driven.DocumentStore
	extractor driven.Extractor
	chunker   driven.PostProcessor
	embedder  driven.EmbeddingService
	vision    driven.VisionService
	platform  domain.Platform
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	store driven.DocumentStore,
	extractor driven.Extractor,
	chunker driven.PostProcessor,
	embedder driven.EmbeddingService,
	vision driven.VisionService,
	platform domain.Platform,
) *DocumentService {
	return &DocumentService{
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		vision:    vision,
		platform:  platform,
	}
}

// UploadDocument ingests a text or PDF file.
func (s *DocumentService) UploadDocument(ctx context.Context, src driving.UploadSource) (*driving.UploadResult, error) {
	filename, data, err := s.resolveSource(src)
	if err != nil {
		return nil, err
	}

	if !s.extractor.Supports(filename) {
		return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, filepath.Ext(filename))
	}

	content, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", filename, err)
	}

	doc := s.newDocument(filename, content, domain.ContentTypeText)
	return s.persist(ctx, doc)
}

// UploadImage ingests an image by describing it with the vision model.
func (s *DocumentService) UploadImage(ctx context.Context, src driving.UploadSource) (*driving.UploadResult, error) {
	filename, data, err := s.resolveSource(src)
	if err != nil {
		return nil, err
	}

	mimeType, ok := imageMIMETypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidInput, filepath.Ext(filename))
	}

	description, err := s.vision.Describe(ctx, data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", filename, err)
	}

	doc := s.newDocument(filename, description, domain.ContentTypeImage)
	return s.persist(ctx, doc)
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get retrieves a document by exactly one of id or filename.
func (s *DocumentService) Get(ctx context.Context, ref driving.DocumentRef) (*domain.Document, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if ref.ID != "" {
		return s.store.GetDocumentByID(ctx, ref.ID)
	}
	return s.store.GetDocumentByFilename(ctx, ref.Filename)
}

// Delete removes a document by exactly one of id or filename.
func (s *DocumentService) Delete(ctx context.Context, ref driving.DocumentRef) error {
	doc, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	return s.store.DeleteDocument(ctx, doc.ID)
}

// DeleteMany removes documents by id and returns the number deleted.
func (s *DocumentService) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: document_ids must not be empty", domain.ErrInvalidInput)
	}

	deleted := 0
	for _, id := range ids {
		if err := s.store.DeleteDocument(ctx, id); err != nil {
			return deleted, fmt.Errorf("deleting %s: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

// resolveSource validates the upload source and yields (filename, data).
func (s *DocumentService) resolveSource(src driving.UploadSource) (string, []byte, error) {
	if err := src.Validate(); err != nil {
		return "", nil, err
	}

	if src.Path != "" {
		if !s.platform.HasFilesystem {
			return "", nil, fmt.Errorf("%w: file_path uploads are disabled, send file_data instead", domain.ErrFilesystemUnavailable)
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return "", nil, fmt.Errorf("reading %s: %w", src.Path, err)
		}
		return filepath.Base(src.Path), data, nil
	}

	return src.Filename, src.Data, nil
}

func (s *DocumentService) newDocument(filename, content, contentType string) *domain.Document {
	return &domain.Document{
		ID:          uuid.New().String(),
		Filename:    filename,
		Content:     content,
		ContentType: contentType,
		Metadata:    make(map[string]any),
		CreatedAt:   time.Now().UTC(),
	}
}

// persist saves the document, then chunks and embeds its content. Individual
// embedding failures are logged and skipped; the result reports how many
// chunks made it so callers can detect partial failure.
func (s *DocumentService) persist(ctx context.Context, doc *domain.Document) (*driving.UploadResult, error) {
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	chunks, err := s.chunker.Process(ctx, doc, nil)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", doc.Filename, err)
	}

	embedded := make([]domain.Chunk, 0, len(chunks))
	for i := range chunks {
		vector, err := s.embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			logger.Warn("embedding chunk %d of %s failed: %v", chunks[i].ChunkIndex, doc.Filename, err)
			continue
		}
		chunks[i].Embedding = vector
		embedded = append(embedded, chunks[i])
	}

	if len(embedded) > 0 {
		if err := s.store.SaveChunks(ctx, embedded); err != nil {
			return nil, fmt.Errorf("saving chunks: %w", err)
		}
	}

	return &driving.UploadResult{
		Document:      *doc,
		ChunksCreated: len(embedded),
		TotalChunks:   len(chunks),
	}, nil
}
