// Package openai provides an image description adapter using the OpenAI
// chat completions API with vision input.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
)

// Ensure VisionService implements the interface.
var _ driven.VisionService = (*VisionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second

	// DefaultPrompt asks for a description dense enough to embed and
	// search against later.
	DefaultPrompt = "Describe this image in detail. Include any visible text, " +
		"diagrams, tables, and the overall subject matter."
)

// Config holds configuration for the OpenAI vision service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the vision-capable chat model (default: gpt-4o-mini).
	Model string

	// Prompt overrides the default description prompt.
	Prompt string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// VisionService describes images using the OpenAI API.
type VisionService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	prompt  string
}

// Wire types. Vision messages carry mixed content parts, so the message
// shape differs from the plain chat adapter.

type visionRequest struct {
	Model    string          `json:"model"`
	Messages []visionMessage `json:"messages"`
}

type visionMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewVisionService creates a new OpenAI vision service.
func NewVisionService(cfg Config) (*VisionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VisionService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		prompt:  cfg.Prompt,
	}, nil
}

// Describe returns a textual description of the image data.
func (s *VisionService) Describe(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("openai: image data is empty")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	req := visionRequest{
		Model: s.model,
		Messages: []visionMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: s.prompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
				},
			},
		},
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", &domain.UpstreamError{Collaborator: "openai", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.UpstreamError{Collaborator: "openai", Err: err}
	}

	var visionResp visionResponse
	if err := json.Unmarshal(body, &visionResp); err != nil {
		return "", &domain.UpstreamError{Collaborator: "openai", Err: fmt.Errorf("decoding response: %w", err)}
	}
	if visionResp.Error != nil {
		return "", &domain.UpstreamError{Collaborator: "openai", Err: fmt.Errorf("%s", visionResp.Error.Message)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &domain.UpstreamError{Collaborator: "openai", Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}
	if len(visionResp.Choices) == 0 {
		return "", &domain.UpstreamError{Collaborator: "openai", Err: fmt.Errorf("no choices returned")}
	}

	return visionResp.Choices[0].Message.Content, nil
}

// Close releases resources.
func (s *VisionService) Close() error {
	return nil
}
