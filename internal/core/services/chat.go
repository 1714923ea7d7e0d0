package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kbridge/kbridge/internal/core/domain"
	"github.com/kbridge/kbridge/internal/core/ports/driven"
	"github.com/kbridge/kbridge/internal/core/ports/driving"
	"github.com/kbridge/kbridge/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultSystemPrompt is used when no prompt is configured.
const DefaultSystemPrompt = "You are a helpful assistant with access to a " +
	"knowledge base containing documents and images uploaded by the user. " +
	"Use the available tools to search and manage it."

// maxToolRounds bounds the tool-call loop so a misbehaving model cannot spin
// forever.
const maxToolRounds = 8

// ChatService runs conversational turns with tool access.
type ChatService struct {
	llm          driven.LLMService
	tools        driven.ToolCaller
	history      driven.HistoryStore
	systemPrompt string
}

// NewChatService creates a new chat service. An empty systemPrompt falls
// back to DefaultSystemPrompt.
func NewChatService(llm driven.LLMService, tools driven.ToolCaller, history driven.HistoryStore, systemPrompt string) *ChatService {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &ChatService{
		llm:          llm,
		tools:        tools,
		history:      history,
		systemPrompt: systemPrompt,
	}
}

// Chat runs one turn: load history, let the model call tools until it
// produces a final answer, persist the exchange.
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (*driving.ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message must not be empty", domain.ErrInvalidInput)
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	past, err := s.history.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	defs, err := s.tools.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}

	messages := make([]domain.ChatMessage, 0, len(past)+2)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: s.systemPrompt})
	messages = append(messages, past...)
	userMsg := domain.ChatMessage{Role: domain.RoleUser, Content: message}
	messages = append(messages, userMsg)

	var final *domain.ChatMessage
	for round := 0; round < maxToolRounds; round++ {
		reply, err := s.llm.ChatCompletion(ctx, messages, defs)
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			final = reply
			break
		}

		messages = append(messages, *reply)
		for _, call := range reply.ToolCalls {
			logger.Debug("tool call %s(%s)", call.Name, string(call.Arguments))
			result, err := s.tools.CallTool(ctx, call.Name, call.Arguments)
			if err != nil {
				// Transport failure; surface in-band so the model
				// can recover or apologise.
				result = fmt.Sprintf("Error: %v", err)
			}
			messages = append(messages, domain.ChatMessage{
				Role:       domain.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	if final == nil {
		return nil, fmt.Errorf("tool loop exceeded %d rounds", maxToolRounds)
	}

	if err := s.history.Append(ctx, sessionID, userMsg, *final); err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}

	return &driving.ChatResult{
		SessionID: sessionID,
		Response:  final.Content,
	}, nil
}
