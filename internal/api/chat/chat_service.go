package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/attractions"
	"github.com/FACorreiaa/go-travel-assistant/internal/api/conversation"
	generativeAI "github.com/FACorreiaa/go-travel-assistant/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const (
	titleRunes    = 30
	emptyAnswer   = "抱歉，我暂时无法回答您的问题。"
	failurePrefix = "抱歉，AI服务暂时不可用："
)

var ErrEmptyMessage = errors.New("message is empty")

type SendRequest struct {
	Message        string `json:"message" example:"推荐一下北京的景点"`
	ConversationID string `json:"conversation_id,omitempty" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
}

type SendResponse struct {
	ConversationID uuid.UUID          `json:"conversation_id"`
	UserMessage    types.Message      `json:"user_message"`
	AIMessage      types.Message      `json:"ai_message"`
	Attractions    []types.Attraction `json:"attractions"`
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Send(ctx context.Context, userID uuid.UUID, req SendRequest) (*SendResponse, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      conversation.Repository
	assistant generativeAI.Assistant
	extractor attractions.AttractionExtractor
}

func NewServiceImpl(repo conversation.Repository, assistant generativeAI.Assistant,
	extractor attractions.AttractionExtractor, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		assistant: assistant,
		extractor: extractor,
	}
}

// TitleFromMessage uses the first 30 runes of the message as a conversation
// title, marking truncation with "...".
func TitleFromMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= titleRunes {
		return message
	}
	return string(runes[:titleRunes]) + "..."
}

// Send stores the user message, asks the assistant, extracts attractions from
// the answer and stores the reply. Assistant failures become an apology in
// the reply rather than an error.
func (s *ServiceImpl) Send(ctx context.Context, userID uuid.UUID, req SendRequest) (*SendResponse, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "Send", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Send"), slog.String("userID", userID.String()))

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.resolveConversation(ctx, userID, req.ConversationID, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "conversation unavailable")
		return nil, err
	}
	span.SetAttributes(attribute.String("conversation.id", conv.ID.String()))

	userMsg, err := s.repo.AddMessage(ctx, types.Message{
		ConversationID: conv.ID,
		SenderType:     types.SenderUser,
		Content:        message,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}
	metrics.Get().ChatMessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("sender", string(types.SenderUser))))

	answer := s.ask(ctx, l, conv, message, userID)

	found := s.extractor.Extract(answer)
	metrics.Get().AttractionsExtracted.Record(ctx, int64(len(found)))
	span.SetAttributes(attribute.Int("attractions.count", len(found)))

	aiMsg, err := s.repo.AddMessage(ctx, types.Message{
		ConversationID: conv.ID,
		SenderType:     types.SenderAI,
		Content:        answer,
		Attractions:    found,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save ai message: %w", err)
	}
	metrics.Get().ChatMessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("sender", string(types.SenderAI))))

	return &SendResponse{
		ConversationID: conv.ID,
		UserMessage:    *userMsg,
		AIMessage:      *aiMsg,
		Attractions:    found,
	}, nil
}

// resolveConversation loads the caller's conversation, or starts a new one
// when no id is given or the id does not resolve to a conversation they own.
func (s *ServiceImpl) resolveConversation(ctx context.Context, userID uuid.UUID, rawID, message string) (*types.Conversation, error) {
	if rawID != "" {
		if id, err := uuid.Parse(rawID); err == nil {
			conv, err := s.repo.GetConversation(ctx, userID, id)
			switch {
			case err == nil:
				return conv, nil
			case !errors.Is(err, conversation.ErrNotFound):
				return nil, fmt.Errorf("failed to load conversation: %w", err)
			}
		}
	}

	conv, err := s.repo.CreateConversation(ctx, userID, TitleFromMessage(message))
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *ServiceImpl) ask(ctx context.Context, l *slog.Logger, conv *types.Conversation, message string, userID uuid.UUID) string {
	var providerID string
	if conv.ProviderConversationID != nil {
		providerID = *conv.ProviderConversationID
	}

	start := time.Now()
	resp, err := s.assistant.Ask(ctx, generativeAI.AskRequest{
		Message:        message,
		ConversationID: providerID,
		UserID:         "user_" + userID.String(),
	})
	metrics.Get().AIRequestDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		metrics.Get().AIRequestErrorsTotal.Add(ctx, 1)
		l.WarnContext(ctx, "Assistant call failed", slog.Any("error", err))
		trace.SpanFromContext(ctx).RecordError(err)
		return failurePrefix + generativeAI.Reason(err)
	}

	if providerID == "" && resp.ConversationID != "" {
		if err := s.repo.SetProviderConversationID(ctx, conv.ID, resp.ConversationID); err != nil {
			l.WarnContext(ctx, "Could not store provider conversation id", slog.Any("error", err))
		}
	}

	if strings.TrimSpace(resp.Answer) == "" {
		return emptyAnswer
	}
	return resp.Answer
}
