package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const Version = "1.0.0"

type Handler struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger, now: time.Now}
}

// Health godoc
// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200 {object} types.HealthResponse
// @Router       /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, types.HealthResponse{
		Status:    "ok",
		Message:   "旅游助手服务运行正常",
		Timestamp: h.now().Format(time.DateTime),
		Version:   Version,
	})
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write ping response", slog.Any("error", err))
	}
}
