package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
)

type fakeChatService struct {
	result *driving.ChatResult
	err    error

	lastSessionID string
	lastMessage   string
}

func (f *fakeChatService) Chat(_ context.Context, sessionID, message string) (*driving.ChatResult, error) {
	f.lastSessionID = sessionID
	f.lastMessage = message
	return f.result, f.err
}

type fakeDocumentService struct {
	uploadResult *driving.UploadResult
	documents    []domain.Document
	deleted      int
	err          error

	uploadedImage bool
	lastSource    driving.UploadSource
	lastRef       driving.DocumentRef
	lastIDs       []string
}

func (f *fakeDocumentService) UploadDocument(_ context.Context, src driving.UploadSource) (*driving.UploadResult, error) {
	f.uploadedImage = false
	f.lastSource = src
	return f.uploadResult, f.err
}

func (f *fakeDocumentService) UploadImage(_ context.Context, src driving.UploadSource) (*driving.UploadResult, error) {
	f.uploadedImage = true
	f.lastSource = src
	return f.uploadResult, f.err
}

func (f *fakeDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return f.documents, f.err
}

func (f *fakeDocumentService) Get(_ context.Context, ref driving.DocumentRef) (*domain.Document, error) {
	f.lastRef = ref
	return nil, f.err
}

func (f *fakeDocumentService) Delete(_ context.Context, ref driving.DocumentRef) error {
	f.lastRef = ref
	return f.err
}

func (f *fakeDocumentService) DeleteMany(_ context.Context, ids []string) (int, error) {
	f.lastIDs = ids
	return f.deleted, f.err
}

func newTestAPI(chat *fakeChatService, docs *fakeDocumentService) *Server {
	if chat == nil {
		chat = &fakeChatService{}
	}
	if docs == nil {
		docs = &fakeDocumentService{}
	}
	return NewServer(chat, docs)
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestAPI(nil, nil)

	rec := doJSON(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChat(t *testing.T) {
	chat := &fakeChatService{result: &driving.ChatResult{SessionID: "sess-1", Response: "hello back"}}
	s := newTestAPI(chat, nil)

	rec := doJSON(s, http.MethodPost, "/api/chat", `{"message":"hello","session_id":"sess-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello back", resp.Response)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "hello", chat.lastMessage)
}

func TestChat_EmptyMessage(t *testing.T) {
	s := newTestAPI(nil, nil)

	rec := doJSON(s, http.MethodPost, "/api/chat", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFiles(t *testing.T) {
	docs := &fakeDocumentService{documents: []domain.Document{
		{ID: "doc-1", Filename: "a.txt", ContentType: domain.ContentTypeText, CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}}
	s := newTestAPI(nil, docs)

	rec := doJSON(s, http.MethodGet, "/api/files", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), "a.txt")
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUpload_TextGoesToDocumentPath(t *testing.T) {
	docs := &fakeDocumentService{uploadResult: &driving.UploadResult{
		Document:      domain.Document{ID: "doc-1", Filename: "notes.txt"},
		ChunksCreated: 2,
		TotalChunks:   2,
	}}
	s := newTestAPI(nil, docs)

	body, contentType := multipartUpload(t, "notes.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, docs.uploadedImage)
	assert.Equal(t, "notes.txt", docs.lastSource.Filename)
	assert.Equal(t, []byte("hello"), docs.lastSource.Data)
}

func TestUpload_ImageGoesToImagePath(t *testing.T) {
	docs := &fakeDocumentService{uploadResult: &driving.UploadResult{
		Document: domain.Document{ID: "doc-2", Filename: "photo.PNG"},
	}}
	s := newTestAPI(nil, docs)

	body, contentType := multipartUpload(t, "photo.PNG", []byte{0x89, 0x50})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, docs.uploadedImage)
}

func TestUpload_MissingFileField(t *testing.T) {
	s := newTestAPI(nil, nil)

	rec := doJSON(s, http.MethodPost, "/api/upload", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFiles_SingleID(t *testing.T) {
	docs := &fakeDocumentService{}
	s := newTestAPI(nil, docs)

	rec := doJSON(s, http.MethodDelete, "/api/files", `{"document_id":"doc-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doc-1", docs.lastRef.ID)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
}

func TestDeleteFiles_ManyIDs(t *testing.T) {
	docs := &fakeDocumentService{deleted: 2}
	s := newTestAPI(nil, docs)

	rec := doJSON(s, http.MethodDelete, "/api/files", `{"document_ids":["a","b"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "b"}, docs.lastIDs)
	assert.JSONEq(t, `{"deleted":2}`, rec.Body.String())
}

func TestDeleteFiles_BothIsError(t *testing.T) {
	s := newTestAPI(nil, nil)

	rec := doJSON(s, http.MethodDelete, "/api/files", `{"document_id":"a","document_ids":["b"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFiles_NeitherIsError(t *testing.T) {
	s := newTestAPI(nil, nil)

	rec := doJSON(s, http.MethodDelete, "/api/files", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteFiles_NotFoundIs404(t *testing.T) {
	docs := &fakeDocumentService{err: domain.ErrNotFound}
	s := newTestAPI(nil, docs)

	rec := doJSON(s, http.MethodDelete, "/api/files", `{"document_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
