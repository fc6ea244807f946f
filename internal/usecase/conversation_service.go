package usecase

import (
	"context"
	"strings"

	"github.com/kotoba/backend/internal/domain"
)

// Greeting is the assistant's opening line in a new conversation
const Greeting = "こんにちは！日本語で話しましょう。Hello! Let's practice Japanese conversation!"

const defaultSystemPrompt = "You are a friendly Japanese conversation partner for a language learner. " +
	"Reply mainly in simple Japanese suited to the learner's level, keep replies short, " +
	"and add a brief English gloss when you introduce new vocabulary."

// ConversationServiceConfig holds configuration for conversation practice
type ConversationServiceConfig struct {
	SystemPrompt string
	HistoryLimit int
}

// ConversationService produces assistant replies for practice conversations
type ConversationService struct {
	chat         domain.ChatClient
	systemPrompt string
	historyLimit int
}

// NewConversationService creates a conversation service. chat may be nil,
// in which case Reply reports ErrServiceUnavailable.
func NewConversationService(chat domain.ChatClient, config ConversationServiceConfig) *ConversationService {
	prompt := strings.TrimSpace(config.SystemPrompt)
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	limit := config.HistoryLimit
	if limit <= 0 {
		limit = 20
	}

	return &ConversationService{
		chat:         chat,
		systemPrompt: prompt,
		historyLimit: limit,
	}
}

// Greeting returns the opening assistant message
func (s *ConversationService) Greeting() domain.ChatMessage {
	return domain.ChatMessage{Role: domain.RoleAssistant, Content: Greeting}
}

// Reply returns the assistant's next message for history.
// The last message must come from the user.
func (s *ConversationService) Reply(ctx context.Context, history []domain.ChatMessage) (*domain.ChatMessage, error) {
	if err := validateHistory(history); err != nil {
		return nil, err
	}
	if s.chat == nil {
		return nil, domain.ErrServiceUnavailable
	}

	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}

	messages := make([]domain.ChatMessage, 0, len(history)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: s.systemPrompt})
	messages = append(messages, history...)

	content, err := s.chat.Chat(ctx, messages)
	if err != nil {
		return nil, upstreamError(err)
	}

	return &domain.ChatMessage{Role: domain.RoleAssistant, Content: strings.TrimSpace(content)}, nil
}

func validateHistory(history []domain.ChatMessage) error {
	if len(history) == 0 {
		return domain.ErrInvalidRequest
	}
	for _, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return domain.ErrInvalidRequest
		}
	}
	last := history[len(history)-1]
	if last.Role != domain.RoleUser || strings.TrimSpace(last.Content) == "" {
		return domain.ErrInvalidRequest
	}
	return nil
}
