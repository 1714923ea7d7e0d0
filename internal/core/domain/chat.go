package domain

import "encoding/json"

// Chat message roles, matching the OpenAI chat completions wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	// Role is one of the Role* constants.
	Role string

	// Content is the message text. Empty for assistant turns that only
	// request tool calls.
	Content string

	// ToolCalls are tool invocations requested by an assistant turn.
	ToolCalls []ToolCall

	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolDef describes a callable tool advertised to the model.
type ToolDef struct {
	Name        string
	Description string

	// InputSchema is the JSON Schema for the tool's arguments.
	InputSchema json.RawMessage
}
