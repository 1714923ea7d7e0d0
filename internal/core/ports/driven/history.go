package driven

import (
	"context"

	"github.com/kbridge/kbridge/internal/core/domain"
)

// HistoryStore persists conversation turns per chat session so that a
// session survives across /api/chat requests.
type HistoryStore interface {
	// Load returns the stored messages for a session in order.
	// An unknown session yields an empty slice, not an error.
	Load(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)

	// Append stores messages at the end of a session's history.
	Append(ctx context.Context, sessionID string, messages ...domain.ChatMessage) error

	// Close releases resources.
	Close() error
}
