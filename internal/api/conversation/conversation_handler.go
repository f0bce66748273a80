package conversation

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListConversations(w http.ResponseWriter, r *http.Request)
	CreateConversation(w http.ResponseWriter, r *http.Request)
	DeleteConversation(w http.ResponseWriter, r *http.Request)
	GetMessages(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:  logger,
		service: service,
	}
}

type CreateConversationRequest struct {
	Title string `json:"title,omitempty" example:"北京三日游"`
}

const notFoundMessage = "对话不存在或无权访问"

// ListConversations godoc
// @Summary      List conversations
// @Description  Returns the caller's conversations, most recently active first.
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} types.Response{data=[]types.Conversation}
// @Failure      401 {object} types.Response
// @Router       /conversations [get]
func (h *HandlerImpl) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "ListConversations")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListConversations"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	conversations, err := h.service.ListConversations(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list conversations", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "获取对话列表失败")
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, conversations)
}

// CreateConversation godoc
// @Summary      Create a conversation
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body CreateConversationRequest false "Optional title"
// @Success      201 {object} types.Response{data=types.Conversation}
// @Router       /conversations [post]
func (h *HandlerImpl) CreateConversation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "CreateConversation")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateConversation"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}

	var req CreateConversationRequest
	if r.ContentLength != 0 {
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
			return
		}
	}

	c, err := h.service.CreateConversation(ctx, userID, req.Title)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create conversation", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "创建对话失败")
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, c)
}

// DeleteConversation godoc
// @Summary      Delete a conversation
// @Description  Deletes the conversation and all of its messages.
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Conversation ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response
// @Router       /conversations/{id} [delete]
func (h *HandlerImpl) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "DeleteConversation")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteConversation"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	conversationID, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
		return
	}

	if err := h.service.DeleteConversation(ctx, userID, conversationID); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
			return
		}
		l.ErrorContext(ctx, "Failed to delete conversation", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "删除对话失败")
		return
	}
	api.MessageResponse(w, r, http.StatusOK, "对话已删除")
}

// GetMessages godoc
// @Summary      Conversation messages
// @Description  Returns the conversation with its messages in chronological order.
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Conversation ID"
// @Success      200 {object} types.Response{data=types.ConversationWithMessages}
// @Failure      404 {object} types.Response
// @Router       /conversations/{id}/messages [get]
func (h *HandlerImpl) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "GetMessages")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetMessages"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	conversationID, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
		return
	}
	span.SetAttributes(attribute.String("conversation.id", conversationID.String()))

	result, err := h.service.GetConversationMessages(ctx, userID, conversationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
			return
		}
		l.ErrorContext(ctx, "Failed to load messages", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "获取消息失败")
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, result)
}
