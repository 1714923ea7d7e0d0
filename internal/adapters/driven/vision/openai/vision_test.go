package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbridge/kbridge/internal/core/domain"
)

func TestDescribe_SendsDataURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req visionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, "text", req.Messages[0].Content[0].Type)
		require.NotNil(t, req.Messages[0].Content[1].ImageURL)
		assert.True(t, strings.HasPrefix(req.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,"))

		w.Write([]byte(`{"choices":[{"message":{"content":"a red square"}}]}`))
	}))
	defer srv.Close()

	svc, err := NewVisionService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	description, err := svc.Describe(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "a red square", description)
}

func TestDescribe_EmptyData(t *testing.T) {
	svc, err := NewVisionService(Config{APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = svc.Describe(context.Background(), nil, "image/png")
	require.Error(t, err)
}

func TestDescribe_APIErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"image too large","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	svc, err := NewVisionService(Config{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Describe(context.Background(), []byte{1, 2, 3}, "image/jpeg")

	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Contains(t, err.Error(), "image too large")
}
