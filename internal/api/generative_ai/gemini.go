package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.0-flash"
	sessionTTL         = 30 * time.Minute
)

const travelInstruction = `你是一名专业的中文旅行助手。推荐景点时请使用编号列表，每个景点单独一段：
第一行写景点名称，随后写"地址：..."，已知时写"经纬度：纬度,经度"，最后用一两句话介绍。`

var _ Assistant = (*GeminiClient)(nil)

// chatSession is the part of *genai.Chat the client needs.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient keeps one genai chat per conversation id so follow-up
// questions carry their history. Idle sessions expire.
type GeminiClient struct {
	startChat func(ctx context.Context) (chatSession, error)
	sessions  *cache.Cache
	logger    *slog.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(travelInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.5),
	}
	start := func(ctx context.Context) (chatSession, error) {
		return client.Chats.Create(ctx, model, genCfg, nil)
	}
	return newGeminiClient(start, logger), nil
}

func newGeminiClient(start func(ctx context.Context) (chatSession, error), logger *slog.Logger) *GeminiClient {
	return &GeminiClient{
		startChat: start,
		sessions:  cache.New(sessionTTL, 2*sessionTTL),
		logger:    logger,
	}
}

func (g *GeminiClient) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	ctx, span := otel.Tracer("GeminiClient").Start(ctx, "Ask", trace.WithAttributes(
		attribute.Bool("gemini.new_conversation", req.ConversationID == ""),
	))
	defer span.End()

	conversationID := req.ConversationID
	var session chatSession
	if conversationID != "" {
		if s, ok := g.sessions.Get(conversationID); ok {
			session = s.(chatSession)
		}
	} else {
		conversationID = uuid.NewString()
	}

	if session == nil {
		s, err := g.startChat(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to start chat")
			return nil, fmt.Errorf("%w: %v", ErrProviderUnreachable, err)
		}
		session = s
	}

	result, err := session.SendMessage(ctx, genai.Part{Text: req.Message})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gemini call failed")
		g.logger.ErrorContext(ctx, "Gemini call failed", slog.Any("error", err))
		return nil, classifyTransportError(err)
	}
	g.sessions.SetDefault(conversationID, session)

	return &AskResponse{
		Answer:         result.Text(),
		ConversationID: conversationID,
		MessageID:      uuid.NewString(),
		CreatedAt:      time.Now(),
	}, nil
}
