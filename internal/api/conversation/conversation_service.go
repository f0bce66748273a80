package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const maxTitleRunes = 200

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListConversations(ctx context.Context, userID uuid.UUID) ([]types.Conversation, error)
	CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error)
	DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error
	GetConversationMessages(ctx context.Context, userID, conversationID uuid.UUID) (*types.ConversationWithMessages, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
}

// DefaultTitle names a conversation created without a title, e.g. "对话 06-01 14:30".
func DefaultTitle(t time.Time) string {
	return "对话 " + t.Format("01-02 15:04")
}

func (s *ServiceImpl) ListConversations(ctx context.Context, userID uuid.UUID) ([]types.Conversation, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "ListConversations", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	return s.repo.ListConversations(ctx, userID)
}

func (s *ServiceImpl) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "CreateConversation")
	defer span.End()
	l := s.logger.With(slog.String("method", "CreateConversation"), slog.String("userID", userID.String()))

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle(s.now())
	}
	if utf8.RuneCountInString(title) > maxTitleRunes {
		title = string([]rune(title)[:maxTitleRunes])
	}

	c, err := s.repo.CreateConversation(ctx, userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	l.DebugContext(ctx, "Conversation created", slog.String("conversation_id", c.ID.String()))
	return c, nil
}

func (s *ServiceImpl) DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "DeleteConversation", trace.WithAttributes(
		attribute.String("conversation.id", conversationID.String()),
	))
	defer span.End()

	return s.repo.DeleteConversation(ctx, userID, conversationID)
}

func (s *ServiceImpl) GetConversationMessages(ctx context.Context, userID, conversationID uuid.UUID) (*types.ConversationWithMessages, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "GetConversationMessages", trace.WithAttributes(
		attribute.String("conversation.id", conversationID.String()),
	))
	defer span.End()

	c, err := s.repo.GetConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	span.SetAttributes(attribute.Int("messages.count", len(messages)))
	return &types.ConversationWithMessages{Conversation: *c, Messages: messages}, nil
}
