package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/contentfilter"
	"github.com/pageza/grocerylist/backend/internal/fallback"
	"github.com/pageza/grocerylist/backend/internal/types"
	"github.com/pageza/grocerylist/backend/internal/validation"
)

const (
	systemPrompt = "You are a helpful cooking assistant. Suggest practical recipes built around the ingredients the user already has, " +
		"list the ingredients and steps clearly, and keep answers concise."

	// FallbackDisclaimer prefixes fallback answers when no provider is configured.
	FallbackDisclaimer = "AI recipe suggestions are not available right now, so here is a suggestion from our recipe collection.\n\n"
)

func firstTurnPrompt(items string) string {
	return fmt.Sprintf("What recipe can I make using these purchased ingredients: %s? "+
		"Please suggest a recipe that uses as many of these ingredients as possible.", items)
}

func continuationPrompt(items string) string {
	return "Continue the conversation about recipe suggestions using these ingredients: " + items
}

// ChatService answers recipe questions with the configured provider and
// falls back to the local generator whenever the provider cannot.
type ChatService struct {
	provider   Provider
	disclaimer bool
	log        logrus.FieldLogger
}

// NewChatService accepts a nil provider, which puts the service in
// permanent fallback mode.
func NewChatService(provider Provider, disclaimer bool, log logrus.FieldLogger) *ChatService {
	return &ChatService{provider: provider, disclaimer: disclaimer, log: log}
}

// ProviderName reports the active provider, or "fallback" without one.
func (s *ChatService) ProviderName() string {
	if s.provider == nil {
		return types.SourceFallback
	}
	return s.provider.Name()
}

// Respond validates the conversation, asks the provider and substitutes
// fallback content on any provider failure. The only errors returned are
// validation errors.
func (s *ChatService) Respond(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	history, err := s.checkHistory(req.PreviousMessages)
	if err != nil {
		return nil, err
	}
	ingredients := purchasedNames(req.PurchasedItems)

	if s.provider == nil {
		msg := s.fallbackMessage(history, ingredients)
		if s.disclaimer {
			msg = FallbackDisclaimer + msg
		}
		return &types.ChatResponse{Message: msg, Role: types.ChatRoleAssistant, Source: types.SourceFallback}, nil
	}

	reply, err := s.provider.Complete(ctx, buildMessages(history, ingredients))
	if err == nil {
		return &types.ChatResponse{
			Message: reply.Content,
			Role:    types.ChatRoleAssistant,
			Source:  s.provider.Name(),
		}, nil
	}

	pe := AsProviderError(err)
	s.log.WithFields(logrus.Fields{
		"provider": s.provider.Name(),
		"kind":     pe.Kind,
		"status":   pe.StatusCode,
		"code":     pe.Code,
	}).WithError(err).Warn("Provider failed, answering from fallback")

	resp := &types.ChatResponse{
		Message: s.fallbackMessage(history, ingredients),
		Role:    types.ChatRoleAssistant,
		Source:  types.SourceFallback,
	}
	if pe.Kind == ProviderRateLimited {
		resp.Error = pe.Message
		resp.ErrorCode = pe.Code
		if resp.ErrorCode == "" {
			resp.ErrorCode = string(ProviderRateLimited)
		}
	}
	return resp, nil
}

func (s *ChatService) fallbackMessage(history []types.ChatMessage, ingredients []string) string {
	if len(history) == 0 {
		return fallback.GenerateRecipeSuggestion(ingredients)
	}
	return fallback.GenerateFollowupResponse(followupQuery(history), ingredients)
}

// checkHistory rejects unknown roles and runs the latest user turn through
// validation and the content filter. Contents are passed on unescaped since
// they go to the provider, not into HTML. Filtered text is logged masked.
func (s *ChatService) checkHistory(messages []types.ChatMessage) ([]types.ChatMessage, error) {
	history := make([]types.ChatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != types.ChatRoleUser && role != types.ChatRoleAssistant {
			return nil, apperrors.Validation(fmt.Sprintf("Unsupported message role %q", m.Role))
		}
		history = append(history, types.ChatMessage{Role: role, Content: m.Content})
	}

	if last := lastUserMessage(history); last != nil {
		if res := validation.ValidateChatText(last.Content); !res.IsValid {
			return nil, apperrors.Validation(res.Error)
		}
		if msg := contentfilter.Validate(last.Content); msg != "" {
			s.log.WithField("content", contentfilter.Mask(last.Content)).Warn("Chat message rejected by content filter")
			return nil, apperrors.Validation(msg)
		}
	}
	return history, nil
}

func lastUserMessage(history []types.ChatMessage) *types.ChatMessage {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == types.ChatRoleUser {
			return &history[i]
		}
	}
	return nil
}

// followupQuery is the most recent user turn, or the last turn when the
// client sent only assistant turns.
func followupQuery(history []types.ChatMessage) string {
	if m := lastUserMessage(history); m != nil {
		return m.Content
	}
	return history[len(history)-1].Content
}

func purchasedNames(items []types.PurchasedItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name := strings.TrimSpace(item.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// buildMessages assembles the provider conversation. A history that does
// not open with a user turn gets the first-turn prompt inserted ahead of it.
func buildMessages(history []types.ChatMessage, ingredients []string) []types.ChatMessage {
	items := strings.Join(ingredients, ", ")

	messages := make([]types.ChatMessage, 0, len(history)+3)
	messages = append(messages, types.ChatMessage{Role: types.ChatRoleSystem, Content: systemPrompt})

	if len(history) == 0 {
		return append(messages, types.ChatMessage{Role: types.ChatRoleUser, Content: firstTurnPrompt(items)})
	}

	if history[0].Role != types.ChatRoleUser {
		messages = append(messages, types.ChatMessage{Role: types.ChatRoleUser, Content: firstTurnPrompt(items)})
	}
	messages = append(messages, history...)
	return append(messages, types.ChatMessage{Role: types.ChatRoleUser, Content: continuationPrompt(items)})
}
