package trips

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	CreateTrip(ctx context.Context, userID uuid.UUID, req CreateTripRequest) (*types.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, req UpdateTripRequest) (*types.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
	AddActivity(ctx context.Context, userID, tripID uuid.UUID, req AddActivityRequest) (*types.TripActivity, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "ListTrips")
	defer span.End()

	return s.repo.ListTrips(ctx, userID)
}

func (s *ServiceImpl) CreateTrip(ctx context.Context, userID uuid.UUID, req CreateTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "CreateTrip", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "CreateTrip"), slog.String("userID", userID.String()))

	trip, err := req.toTrip()
	if err != nil {
		return nil, err
	}
	trip.UserID = userID

	created, err := s.repo.CreateTrip(ctx, trip)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	l.InfoContext(ctx, "Trip created", slog.String("trip_id", created.ID.String()))
	return created, nil
}

// GetTrip returns the trip with its activities ordered by day.
func (s *ServiceImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	trip, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	activities, err := s.repo.ListActivities(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	trip.Activities = activities
	return trip, nil
}

func (s *ServiceImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, req UpdateTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "UpdateTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if req == (UpdateTripRequest{}) {
		return nil, invalid("没有提供要更新的字段")
	}

	current, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	update, err := req.toUpdate(current)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateTrip(ctx, userID, tripID, update)
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	return s.repo.DeleteTrip(ctx, userID, tripID)
}

func (s *ServiceImpl) AddActivity(ctx context.Context, userID, tripID uuid.UUID, req AddActivityRequest) (*types.TripActivity, error) {
	ctx, span := otel.Tracer("TripsService").Start(ctx, "AddActivity", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	activity, err := req.toActivity()
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	activity.TripID = tripID
	return s.repo.AddActivity(ctx, activity)
}
