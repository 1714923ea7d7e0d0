package driven

import (
	"context"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// LLMService conducts chat completions, optionally offering tools the model
// may call.
type LLMService interface {
	// ChatCompletion runs one completion over the conversation. The
	// returned assistant message either carries final content or a set of
	// requested tool calls.
	ChatCompletion(ctx context.Context, messages []domain.ChatMessage, tools []domain.ToolDef) (*domain.ChatMessage, error)

	// Close releases resources.
	Close() error
}
