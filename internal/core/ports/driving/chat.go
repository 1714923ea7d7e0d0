package driving

import "context"

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	// SessionID identifies the conversation; generated when the caller
	// did not supply one.
	SessionID string

	// Response is the assistant's final text.
	Response string
}

// ChatService runs a conversational turn against the LLM, letting it call
// knowledge-base tools, with history persisted per session.
type ChatService interface {
	// Chat appends the user message to the session, runs the tool loop
	// and returns the assistant response. An empty sessionID starts a new
	// session.
	Chat(ctx context.Context, sessionID, message string) (*ChatResult, error)
}
