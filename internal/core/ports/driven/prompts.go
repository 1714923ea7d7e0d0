package driven

// Prompt names used by the chat services.
const (
	// PromptChatSystem is the system prompt for document chat.
	PromptChatSystem = "chat_system"

	// PromptImageDescribe asks the vision model to describe an image.
	PromptImageDescribe = "image_describe"
)

// PromptStore loads LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
