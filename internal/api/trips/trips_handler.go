package trips

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListTrips(w http.ResponseWriter, r *http.Request)
	CreateTrip(w http.ResponseWriter, r *http.Request)
	GetTrip(w http.ResponseWriter, r *http.Request)
	UpdateTrip(w http.ResponseWriter, r *http.Request)
	DeleteTrip(w http.ResponseWriter, r *http.Request)
	AddActivity(w http.ResponseWriter, r *http.Request)
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

const notFoundMessage = "行程不存在或无权访问"

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, span trace.Span, l *slog.Logger, err error) {
	if msg, ok := Message(err); ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, msg)
		return
	}
	if errors.Is(err, ErrNotFound) {
		api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
		return
	}
	l.ErrorContext(r.Context(), "Trip request failed", slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "trip request failed")
	api.ErrorResponse(w, r, http.StatusInternalServerError, "服务器内部错误")
}

// ListTrips godoc
// @Summary      List trips
// @Tags         Trips
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} types.Response{data=[]types.Trip}
// @Router       /trips [get]
func (h *HandlerImpl) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "ListTrips")
	defer span.End()
	l := h.logger.With(slog.String("handler", "ListTrips"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}

	trips, err := h.service.ListTrips(ctx, userID)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, trips)
}

// CreateTrip godoc
// @Summary      Create a trip
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body CreateTripRequest true "Trip"
// @Success      201 {object} types.Response{data=types.Trip}
// @Failure      400 {object} types.Response
// @Router       /trips [post]
func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "CreateTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateTrip"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}

	var req CreateTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
		return
	}

	trip, err := h.service.CreateTrip(ctx, userID, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	span.SetAttributes(attribute.String("trip.id", trip.ID.String()))
	api.SuccessResponse(w, r, http.StatusCreated, trip)
}

// GetTrip godoc
// @Summary      Trip details
// @Description  Returns the trip with its activities.
// @Tags         Trips
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Trip ID"
// @Success      200 {object} types.Response{data=types.Trip}
// @Failure      404 {object} types.Response
// @Router       /trips/{id} [get]
func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "GetTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetTrip"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	tripID, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
		return
	}

	trip, err := h.service.GetTrip(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, trip)
}

// UpdateTrip godoc
// @Summary      Update a trip
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Trip ID"
// @Param        body body UpdateTripRequest true "Fields to change"
// @Success      200 {object} types.Response{data=types.Trip}
// @Failure      400 {object} types.Response
// @Failure      404 {object} types.Response
// @Router       /trips/{id} [put]
func (h *HandlerImpl) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "UpdateTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdateTrip"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	tripID, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
		return
	}

	var req UpdateTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
		return
	}

	trip, err := h.service.UpdateTrip(ctx, userID, tripID, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, trip)
}

// DeleteTrip godoc
// @Summary      Delete a trip
// @Tags         Trips
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Trip ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response
// @Router       /trips/{id} [delete]
func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "DeleteTrip")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteTrip"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	tripID, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
		return
	}

	if err := h.service.DeleteTrip(ctx, userID, tripID); err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.MessageResponse(w, r, http.StatusOK, "行程已删除")
}

// AddActivity godoc
// @Summary      Add an activity to a trip
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Trip ID"
// @Param        body body AddActivityRequest true "Activity"
// @Success      201 {object} types.Response{data=types.TripActivity}
// @Failure      400 {object} types.Response
// @Failure      404 {object} types.Response
// @Router       /trips/{id}/activities [post]
func (h *HandlerImpl) AddActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripsHandler").Start(r.Context(), "AddActivity")
	defer span.End()
	l := h.logger.With(slog.String("handler", "AddActivity"))

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	tripID, err := api.URLParamUUID(r, "id")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, notFoundMessage)
		return
	}

	var req AddActivityRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
		return
	}

	activity, err := h.service.AddActivity(ctx, userID, tripID, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, activity)
}
