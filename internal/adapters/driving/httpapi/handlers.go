package httpapi

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
)

// ChatRequest is the /api/chat request body.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the /api/chat response body.
type ChatResponse struct {
	Response  string `json:"response"`
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}

// FileInfo describes one stored document.
type FileInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at"`
}

// UploadResponse is the /api/upload response body.
type UploadResponse struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
	TotalChunks   int    `json:"total_chunks"`
}

// DeleteRequest is the DELETE /api/files request body. One of DocumentID
// or DocumentIDs must be set.
type DeleteRequest struct {
	DocumentID  string   `json:"document_id,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// DeleteResponse is the DELETE /api/files response body.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	result, err := s.chat.Chat(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Response:  result.Response,
		Status:    "ok",
		SessionID: result.SessionID,
	})
}

func (s *Server) handleListFiles(c echo.Context) error {
	docs, err := s.documents.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}

	files := make([]FileInfo, len(docs))
	for i, d := range docs {
		files[i] = FileInfo{
			ID:          d.ID,
			Filename:    d.Filename,
			ContentType: d.ContentType,
			CreatedAt:   d.CreatedAt.Format(time.RFC3339),
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"files": files, "count": len(files)})
}

func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "opening uploaded file"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reading uploaded file"})
	}
	if len(data) > MaxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds 10MB limit"})
	}

	src := driving.UploadSource{Data: data, Filename: fileHeader.Filename}

	var result *driving.UploadResult
	if imageExts[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		result, err = s.documents.UploadImage(c.Request().Context(), src)
	} else {
		result, err = s.documents.UploadDocument(c.Request().Context(), src)
	}
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, UploadResponse{
		DocumentID:    result.Document.ID,
		Filename:      result.Document.Filename,
		ChunksCreated: result.ChunksCreated,
		TotalChunks:   result.TotalChunks,
	})
}

func (s *Server) handleDeleteFiles(c echo.Context) error {
	var req DeleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()

	switch {
	case req.DocumentID != "" && len(req.DocumentIDs) > 0:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "supply either document_id or document_ids, not both"})

	case req.DocumentID != "":
		if err := s.documents.Delete(ctx, driving.DocumentRef{ID: req.DocumentID}); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, DeleteResponse{Deleted: 1})

	case len(req.DocumentIDs) > 0:
		deleted, err := s.documents.DeleteMany(ctx, req.DocumentIDs)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, DeleteResponse{Deleted: deleted})

	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "document_id or document_ids is required"})
	}
}

// serviceError maps domain errors onto HTTP statuses.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
