// Package generativeAI talks to the AI providers that answer travel questions.
package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FACorreiaa/go-travel-assistant/config"
)

var (
	ErrMissingAPIKey       = errors.New("ai provider api key is not configured")
	ErrInvalidAPIKey       = errors.New("ai provider rejected the api key")
	ErrRateLimited         = errors.New("ai provider rate limit exceeded")
	ErrProviderServer      = errors.New("ai provider internal error")
	ErrProviderTimeout     = errors.New("ai provider timed out")
	ErrProviderUnreachable = errors.New("ai provider unreachable")
	ErrMalformedResponse   = errors.New("ai provider returned a malformed response")
)

// reasons are the user-facing explanations shown in chat when a provider
// call fails.
var reasons = []struct {
	err error
	msg string
}{
	{ErrMissingAPIKey, "AI服务密钥未配置，请联系管理员"},
	{ErrInvalidAPIKey, "API密钥无效或已过期，请检查DIFY_API_KEY配置"},
	{ErrRateLimited, "API调用频率超限，请稍后重试"},
	{ErrProviderServer, "AI服务器内部错误，请稍后重试"},
	{ErrProviderTimeout, "AI服务响应超时，请稍后重试"},
	{ErrProviderUnreachable, "无法连接到AI服务，请检查网络连接"},
	{ErrMalformedResponse, "AI服务返回了无法解析的内容"},
}

// Reason turns a provider error into a short message for end users.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.msg
		}
	}
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("API调用失败 (状态码: %d)", se.StatusCode)
	}
	return "服务异常"
}

// StatusError is a non-200 provider answer. It unwraps to the matching
// sentinel for 401, 429 and 5xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai provider returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == 401:
		return ErrInvalidAPIKey
	case e.StatusCode == 429:
		return ErrRateLimited
	case e.StatusCode >= 500:
		return ErrProviderServer
	}
	return nil
}

type AskRequest struct {
	Message string
	// ConversationID is the provider's conversation id; empty starts a new
	// conversation.
	ConversationID string
	UserID         string
}

type AskResponse struct {
	Answer         string
	ConversationID string
	MessageID      string
	CreatedAt      time.Time
}

// Assistant answers one user message.
type Assistant interface {
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)
}

// Pinger is implemented by assistants that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewAssistant builds the provider selected in cfg, wrapped with the mock
// fallback when enabled.
func NewAssistant(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Assistant, error) {
	var primary Assistant
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderDify, "":
		primary = NewDifyClient(DifyConfig{
			BaseURL:     cfg.Dify.BaseURL,
			APIKey:      cfg.Dify.APIKey,
			Timeout:     cfg.Dify.Timeout,
			MaxRetries:  cfg.Dify.MaxRetries,
			DefaultUser: cfg.Dify.DefaultUser,
		}, logger)
	case config.ProviderGemini:
		g, err := NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
		if err != nil {
			return nil, err
		}
		primary = g
	case config.ProviderMock:
		return NewMockAssistant(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}

	if cfg.FallbackToMock {
		return NewFallbackAssistant(primary, NewMockAssistant(), logger), nil
	}
	return primary, nil
}
