package trips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
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

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	CreateTrip(ctx context.Context, trip types.Trip) (*types.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, update TripUpdate) (*types.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
	ListActivities(ctx context.Context, tripID uuid.UUID) ([]types.TripActivity, error)
	AddActivity(ctx context.Context, activity types.TripActivity) (*types.TripActivity, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.DB
	psql   sq.StatementBuilderType
}

func NewRepository(pgpool database.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const tripColumns = "id, user_id, title, destination, start_date, end_date, budget, status, cover_image, description, created_at, updated_at"

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var (
		t      types.Trip
		status string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Destination, &t.StartDate.Time, &t.EndDate.Time,
		&t.Budget, &status, &t.CoverImage, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = types.TripStatus(status)
	return &t, nil
}

func (r *RepositoryImpl) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
	r.logger.ErrorContext(ctx, "Trip query failed", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%s: %w", op, err)
}

func (r *RepositoryImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "ListTrips", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `SELECT `+tripColumns+` FROM user_trips
		WHERE user_id = $1 ORDER BY start_date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, r.fail(ctx, span, "list trips", err)
	}
	defer rows.Close()

	trips := make([]types.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, r.fail(ctx, span, "scan trip", err)
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, span, "iterate trips", err)
	}
	return trips, nil
}

func (r *RepositoryImpl) CreateTrip(ctx context.Context, trip types.Trip) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "CreateTrip", trace.WithAttributes(
		attribute.String("user.id", trip.UserID.String()),
		attribute.String("trip.destination", trip.Destination),
	))
	defer span.End()

	created, err := scanTrip(r.pgpool.QueryRow(ctx, `
		INSERT INTO user_trips (user_id, title, destination, start_date, end_date, budget, status, cover_image, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+tripColumns,
		trip.UserID, trip.Title, trip.Destination, trip.StartDate.Time, trip.EndDate.Time,
		trip.Budget, string(trip.Status), trip.CoverImage, trip.Description))
	if err != nil {
		return nil, r.fail(ctx, span, "create trip", err)
	}
	return created, nil
}

func (r *RepositoryImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	t, err := scanTrip(r.pgpool.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM user_trips WHERE id = $1 AND user_id = $2`, tripID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, r.fail(ctx, span, "get trip", err)
	}
	return t, nil
}

// UpdateTrip writes only the fields set in update.
func (r *RepositoryImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, update TripUpdate) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "UpdateTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	query, args, err := r.updateQuery(userID, tripID, update)
	if err != nil {
		return nil, err
	}

	t, err := scanTrip(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, r.fail(ctx, span, "update trip", err)
	}
	return t, nil
}

func (r *RepositoryImpl) updateQuery(userID, tripID uuid.UUID, u TripUpdate) (string, []interface{}, error) {
	if u.IsEmpty() {
		return "", nil, invalid("没有提供要更新的字段")
	}

	b := r.psql.Update("user_trips")
	if u.Title != nil {
		b = b.Set("title", *u.Title)
	}
	if u.Destination != nil {
		b = b.Set("destination", *u.Destination)
	}
	if u.StartDate != nil {
		b = b.Set("start_date", u.StartDate.Time)
	}
	if u.EndDate != nil {
		b = b.Set("end_date", u.EndDate.Time)
	}
	if u.Budget != nil {
		b = b.Set("budget", *u.Budget)
	}
	if u.CoverImage != nil {
		b = b.Set("cover_image", *u.CoverImage)
	}
	if u.Description != nil {
		b = b.Set("description", *u.Description)
	}
	if u.Status != nil {
		b = b.Set("status", string(*u.Status))
	}

	query, args, err := b.
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": tripID, "user_id": userID}).
		Suffix("RETURNING " + tripColumns).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build trip update: %w", err)
	}
	return query, args, nil
}

func (r *RepositoryImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM user_trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return r.fail(ctx, span, "delete trip", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) ListActivities(ctx context.Context, tripID uuid.UUID) ([]types.TripActivity, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "ListActivities", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
		SELECT id, trip_id, day_number, title, description, location, start_time, end_time,
		       estimated_cost, activity_type, created_at
		FROM trip_activities
		WHERE trip_id = $1
		ORDER BY day_number, start_time NULLS LAST, created_at`, tripID)
	if err != nil {
		return nil, r.fail(ctx, span, "list activities", err)
	}
	defer rows.Close()

	activities := make([]types.TripActivity, 0)
	for rows.Next() {
		var a types.TripActivity
		if err := rows.Scan(&a.ID, &a.TripID, &a.DayNumber, &a.Title, &a.Description, &a.Location,
			&a.StartTime, &a.EndTime, &a.EstimatedCost, &a.ActivityType, &a.CreatedAt); err != nil {
			return nil, r.fail(ctx, span, "scan activity", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, span, "iterate activities", err)
	}
	return activities, nil
}

func (r *RepositoryImpl) AddActivity(ctx context.Context, a types.TripActivity) (*types.TripActivity, error) {
	ctx, span := otel.Tracer("TripsRepository").Start(ctx, "AddActivity", trace.WithAttributes(
		attribute.String("trip.id", a.TripID.String()),
		attribute.Int("activity.day", a.DayNumber),
	))
	defer span.End()

	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO trip_activities (trip_id, day_number, title, description, location, start_time, end_time, estimated_cost, activity_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		a.TripID, a.DayNumber, a.Title, a.Description, a.Location, a.StartTime, a.EndTime, a.EstimatedCost, a.ActivityType).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, r.fail(ctx, span, "add activity", err)
	}
	return &a, nil
}
