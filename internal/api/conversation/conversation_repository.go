package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-travel-assistant/app/db"
	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var ErrNotFound = errors.New("conversation not found")

var _ Repository = (*RepositoryImpl)(nil)

// Repository stores conversations and their messages. Every lookup is scoped
// to the owning user.
type Repository interface {
	ListConversations(ctx context.Context, userID uuid.UUID) ([]types.Conversation, error)
	CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error)
	GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*types.Conversation, error)
	DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]types.Message, error)
	// AddMessage inserts the message and bumps the conversation's updated_at.
	AddMessage(ctx context.Context, msg types.Message) (*types.Message, error)
	SetProviderConversationID(ctx context.Context, conversationID uuid.UUID, providerID string) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.DB
}

func NewRepository(pgpool database.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
	r.logger.ErrorContext(ctx, "Conversation query failed", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%s: %w", op, err)
}

func (r *RepositoryImpl) ListConversations(ctx context.Context, userID uuid.UUID) ([]types.Conversation, error) {
	ctx, span := otel.Tracer("ConversationRepository").Start(ctx, "ListConversations", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
		SELECT c.id, c.user_id, c.title, c.provider_conversation_id, c.created_at, c.updated_at,
		       COUNT(m.id) AS message_count
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.updated_at DESC`, userID)
	if err != nil {
		return nil, r.fail(ctx, span, "list conversations", err)
	}
	defer rows.Close()

	conversations := make([]types.Conversation, 0)
	for rows.Next() {
		var c types.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.ProviderConversationID,
			&c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
			return nil, r.fail(ctx, span, "scan conversation", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, span, "iterate conversations", err)
	}
	span.SetAttributes(attribute.Int("conversations.count", len(conversations)))
	return conversations, nil
}

func (r *RepositoryImpl) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.Conversation, error) {
	ctx, span := otel.Tracer("ConversationRepository").Start(ctx, "CreateConversation", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	c := types.Conversation{UserID: userID, Title: title}
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO conversations (user_id, title) VALUES ($1, $2)
		RETURNING id, created_at, updated_at`, userID, title).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, r.fail(ctx, span, "create conversation", err)
	}
	return &c, nil
}

func (r *RepositoryImpl) GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*types.Conversation, error) {
	ctx, span := otel.Tracer("ConversationRepository").Start(ctx, "GetConversation", trace.WithAttributes(
		attribute.String("conversation.id", conversationID.String()),
	))
	defer span.End()

	var c types.Conversation
	err := r.pgpool.QueryRow(ctx, `
		SELECT c.id, c.user_id, c.title, c.provider_conversation_id, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c
		WHERE c.id = $1 AND c.user_id = $2`, conversationID, userID).
		Scan(&c.ID, &c.UserID, &c.Title, &c.ProviderConversationID, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, r.fail(ctx, span, "get conversation", err)
	}
	return &c, nil
}

func (r *RepositoryImpl) DeleteConversation(ctx context.Context, userID, conversationID uuid.UUID) error {
	ctx, span := otel.Tracer("ConversationRepository").Start(ctx, "DeleteConversation", trace.WithAttributes(
		attribute.String("conversation.id", conversationID.String()),
	))
	defer span.End()

	// messages go with the conversation through ON DELETE CASCADE
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM conversations WHERE id = $1 AND user_id = $2`, conversationID, userID)
	if err != nil {
		return r.fail(ctx, span, "delete conversation", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]types.Message, error) {
	ctx, span := otel.Tracer("ConversationRepository").Start(ctx, "ListMessages", trace.WithAttributes(
		attribute.String("conversation.id", conversationID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
		SELECT id, conversation_id, sender_type, content, attractions, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, r.fail(ctx, span, "list messages", err)
	}
	defer rows.Close()

	messages := make([]types.Message, 0)
	for rows.Next() {
		var (
			m           types.Message
			sender      string
			attractions []byte
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &sender, &m.Content, &attractions, &m.CreatedAt); err != nil {
			return nil, r.fail(ctx, span, "scan message", err)
		}
		m.SenderType = types.SenderType(sender)
		if len(attractions) > 0 {
			if err := json.Unmarshal(attractions, &m.Attractions); err != nil {
				r.logger.WarnContext(ctx, "Discarding unreadable attractions",
					slog.String("message_id", m.ID.String()), slog.Any("error", err))
			}
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, span, "iterate messages", err)
	}
	return messages, nil
}

func (r *RepositoryImpl) AddMessage(ctx context.Context, msg types.Message) (*types.Message, error) {
	ctx, span := otel.Tracer("ConversationRepository").Start(ctx, "AddMessage", trace.WithAttributes(
		attribute.String("conversation.id", msg.ConversationID.String()),
		attribute.String("message.sender", string(msg.SenderType)),
	))
	defer span.End()

	var attractions []byte
	if len(msg.Attractions) > 0 {
		var err error
		if attractions, err = json.Marshal(msg.Attractions); err != nil {
			return nil, fmt.Errorf("marshal attractions: %w", err)
		}
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, r.fail(ctx, span, "begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			r.logger.WarnContext(ctx, "Rollback failed", slog.Any("error", err))
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_type, content, attractions)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		msg.ConversationID, string(msg.SenderType), msg.Content, attractions).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, r.fail(ctx, span, "insert message", err)
	}

	if _, err = tx.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, msg.ConversationID); err != nil {
		return nil, r.fail(ctx, span, "touch conversation", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, r.fail(ctx, span, "commit message", err)
	}
	return &msg, nil
}

// SetProviderConversationID records the provider thread id once; later calls
// leave the first value in place.
func (r *RepositoryImpl) SetProviderConversationID(ctx context.Context, conversationID uuid.UUID, providerID string) error {
	ctx, span := otel.Tracer("ConversationRepository").Start(ctx, "SetProviderConversationID")
	defer span.End()

	_, err := r.pgpool.Exec(ctx, `
		UPDATE conversations SET provider_conversation_id = $2
		WHERE id = $1 AND provider_conversation_id IS NULL`, conversationID, providerID)
	if err != nil {
		return r.fail(ctx, span, "set provider conversation id", err)
	}
	return nil
}
