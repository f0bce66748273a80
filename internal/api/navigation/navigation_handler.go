package navigation

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Navigate godoc
// @Summary      Navigation links
// @Description  Builds deep links into the configured map apps for an address.
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        body body Request true "Destination"
// @Success      200 {object} types.Response{data=Response}
// @Failure      400 {object} types.Response
// @Router       /locations/navigation [post]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("NavigationHandler").Start(r.Context(), "Navigate")
	defer span.End()

	var req Request
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "Invalid navigation request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
		return
	}

	resp, err := h.service.Navigate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrEmptyAddress) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "地址不能为空")
			return
		}
		h.logger.ErrorContext(ctx, "Navigation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "服务器内部错误")
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, resp)
}
