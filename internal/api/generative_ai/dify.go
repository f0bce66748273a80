package generativeAI

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	chatMessagesPath = "/chat-messages"
	responseBlocking = "blocking"
	pingMessage      = "测试连接"
	pingUser         = "test_user"
	maxErrorBody     = 2048
)

var _ Assistant = (*DifyClient)(nil)
var _ Pinger = (*DifyClient)(nil)

type DifyConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	DefaultUser string
}

// DifyClient calls the Dify chat-messages API in blocking mode.
type DifyClient struct {
	cfg        DifyConfig
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

type DifyOption func(*DifyClient)

// WithHTTPClient replaces the default client built from DifyConfig.Timeout.
func WithHTTPClient(c *http.Client) DifyOption {
	return func(d *DifyClient) { d.httpClient = c }
}

// WithBackOff sets the retry policy between attempts.
func WithBackOff(f func() backoff.BackOff) DifyOption {
	return func(d *DifyClient) { d.newBackOff = f }
}

func NewDifyClient(cfg DifyConfig, logger *slog.Logger, opts ...DifyOption) *DifyClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DefaultUser == "" {
		cfg.DefaultUser = "default_user"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	d := &DifyClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type difyChatRequest struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	User           string         `json:"user"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

type difyChatResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	CreatedAt      int64  `json:"created_at"`
}

func (d *DifyClient) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	ctx, span := otel.Tracer("DifyClient").Start(ctx, "Ask", trace.WithAttributes(
		attribute.Bool("dify.new_conversation", req.ConversationID == ""),
	))
	defer span.End()

	l := d.logger.With(slog.String("provider", "dify"))

	if d.cfg.APIKey == "" {
		span.SetStatus(codes.Error, "missing api key")
		return nil, ErrMissingAPIKey
	}

	user := req.UserID
	if user == "" {
		user = d.cfg.DefaultUser
	}
	body, err := json.Marshal(difyChatRequest{
		Inputs:         map[string]any{},
		Query:          req.Message,
		ResponseMode:   responseBlocking,
		User:           user,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode dify request: %w", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(d.newBackOff(), uint64(max(d.cfg.MaxRetries, 0))), ctx)
	attempt := 0
	resp, err := backoff.RetryWithData(func() (*difyChatResponse, error) {
		attempt++
		out, err := d.post(ctx, body)
		if err != nil && !retryable(err) {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			l.WarnContext(ctx, "Dify call failed, retrying", slog.Int("attempt", attempt), slog.Any("error", err))
		}
		return out, err
	}, policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dify call failed")
		l.ErrorContext(ctx, "Dify call failed", slog.Int("attempts", attempt), slog.Any("error", err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("dify.answer_length", len(resp.Answer)))
	l.InfoContext(ctx, "Dify answered",
		slog.String("conversation_id", resp.ConversationID),
		slog.Int("answer_length", len(resp.Answer)),
	)

	created := time.Now()
	if resp.CreatedAt > 0 {
		created = time.Unix(resp.CreatedAt, 0)
	}
	return &AskResponse{
		Answer:         resp.Answer,
		ConversationID: resp.ConversationID,
		MessageID:      resp.MessageID,
		CreatedAt:      created,
	}, nil
}

// Ping sends a short test message to confirm the key and endpoint work.
func (d *DifyClient) Ping(ctx context.Context) error {
	_, err := d.Ask(ctx, AskRequest{Message: pingMessage, UserID: pingUser})
	return err
}

func (d *DifyClient) post(ctx context.Context, body []byte) (*difyChatResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.BaseURL+chatMessagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build dify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: string(raw)}
	}

	var out difyChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", ErrProviderTimeout, err)
	default:
		return fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrProviderServer) || errors.Is(err, ErrProviderUnreachable)
}
