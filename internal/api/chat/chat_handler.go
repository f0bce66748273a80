package chat

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
	SendMessage(w http.ResponseWriter, r *http.Request)
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

// SendMessage godoc
// @Summary      Send a chat message
// @Description  Sends a message to the travel assistant. The reply carries the attractions found in the answer for map display.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body SendRequest true "Message"
// @Success      200 {object} types.Response{data=SendResponse}
// @Failure      400 {object} types.Response
// @Failure      401 {object} types.Response
// @Failure      429 {object} types.Response
// @Router       /chat/send [post]
func (h *HandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "SendMessage")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SendMessage"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	var req SendRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid chat request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
		return
	}

	resp, err := h.service.Send(ctx, userID, req)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "消息内容不能为空")
			return
		}
		l.ErrorContext(ctx, "Chat send failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "发送消息失败")
		return
	}

	span.SetAttributes(
		attribute.String("conversation.id", resp.ConversationID.String()),
		attribute.Int("attractions.count", len(resp.Attractions)),
	)
	api.SuccessResponse(w, r, http.StatusOK, resp)
}
