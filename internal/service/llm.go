package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pageza/grocerylist/backend/internal/types"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
	maxErrorBodyBytes  = 64 << 10
)

// ProviderErrorKind classifies a failed provider call.
type ProviderErrorKind string

const (
	ProviderRateLimited ProviderErrorKind = "rate_limited"
	ProviderAuthFailed  ProviderErrorKind = "auth_failed"
	ProviderUnavailable ProviderErrorKind = "unavailable"
	ProviderMalformed   ProviderErrorKind = "malformed"
)

// ProviderError is returned for every failed completion. Kind is derived
// from the HTTP status and the structured error object only.
type ProviderError struct {
	Kind       ProviderErrorKind
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s (status %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("provider %s: %s", e.Kind, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AsProviderError extracts a ProviderError; anything else is treated as
// unavailable.
func AsProviderError(err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Kind: ProviderUnavailable, Err: err}
}

// Provider completes a chat conversation.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []types.ChatMessage) (types.ChatMessage, error)
}

// LLMConfig configures an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	Provider string
	APIKey   string
	APIURL   string
	Model    string
	Timeout  time.Duration
}

// LLMService talks to an OpenAI-compatible chat completions API.
type LLMService struct {
	name    string
	apiKey  string
	apiURL  string
	model   string
	timeout time.Duration
	client  *http.Client
	log     logrus.FieldLogger
}

// NewLLMService returns nil when no API key is configured; callers treat a
// nil provider as permanent fallback mode.
func NewLLMService(cfg LLMConfig, client *http.Client, log logrus.FieldLogger) *LLMService {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{}
	}
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	return &LLMService{
		name:    name,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		apiURL:  cfg.APIURL,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  client,
		log:     log.WithField("provider", name),
	}
}

func (s *LLMService) Name() string {
	return s.name
}

// Request represents a chat completions request
type Request struct {
	Model       string              `json:"model"`
	Messages    []types.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message types.ChatMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

var rateLimitCodes = map[string]bool{
	"insufficient_quota":  true,
	"rate_limit_exceeded": true,
}

// Complete sends the conversation and returns the assistant's reply.
func (s *LLMService) Complete(ctx context.Context, messages []types.ChatMessage) (types.ChatMessage, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := json.Marshal(Request{
		Model:       s.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return types.ChatMessage{}, &ProviderError{Kind: ProviderMalformed, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return types.ChatMessage{}, &ProviderError{Kind: ProviderUnavailable, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return types.ChatMessage{}, &ProviderError{Kind: ProviderUnavailable, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.ChatMessage{}, s.statusError(resp)
	}

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return types.ChatMessage{}, &ProviderError{Kind: ProviderMalformed, StatusCode: resp.StatusCode, Message: "undecodable response", Err: err}
	}
	if len(result.Choices) == 0 {
		return types.ChatMessage{}, &ProviderError{Kind: ProviderMalformed, StatusCode: resp.StatusCode, Message: "no choices in response"}
	}

	msg := result.Choices[0].Message
	if strings.TrimSpace(msg.Content) == "" {
		return types.ChatMessage{}, &ProviderError{Kind: ProviderMalformed, StatusCode: resp.StatusCode, Message: "empty completion"}
	}
	if msg.Role == "" {
		msg.Role = types.ChatRoleAssistant
	}
	return msg, nil
}

func (s *LLMService) statusError(resp *http.Response) *ProviderError {
	pe := &ProviderError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var apiErr apiErrorBody
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		pe.Message = apiErr.Error.Message
		pe.Code = apiErr.Error.Code
		if pe.Code == "" {
			pe.Code = apiErr.Error.Type
		}
	}
	if pe.Message == "" {
		pe.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		rateLimitCodes[apiErr.Error.Code],
		rateLimitCodes[apiErr.Error.Type]:
		pe.Kind = ProviderRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		pe.Kind = ProviderAuthFailed
	case resp.StatusCode >= http.StatusInternalServerError:
		pe.Kind = ProviderUnavailable
	default:
		pe.Kind = ProviderMalformed
	}
	return pe
}
