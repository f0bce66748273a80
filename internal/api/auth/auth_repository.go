package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

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

var _ AuthRepo = (*PostgresAuthRepo)(nil)

type AuthRepo interface {
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*types.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetUserByProvider(ctx context.Context, provider, providerID string) (*types.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	StoreRefreshToken(ctx context.Context, userID, token uuid.UUID, expiresAt time.Time) error
	// ConsumeRefreshToken revokes a live token and returns its owner.
	ConsumeRefreshToken(ctx context.Context, token uuid.UUID) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, token uuid.UUID) error
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool database.DB
}

func NewPostgresAuthRepo(pgpool database.DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, phone, nickname, password_hash, avatar_url, email, provider, provider_id, is_active, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	var hash *string
	err := row.Scan(&u.ID, &u.Phone, &u.Nickname, &hash, &u.AvatarURL, &u.Email,
		&u.Provider, &u.ProviderID, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	return &u, nil
}

func (r *PostgresAuthRepo) recordError(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
	r.logger.ErrorContext(ctx, "Auth query failed", slog.String("op", op), slog.Any("error", err))
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		attribute.String("user.provider", user.Provider),
	))
	defer span.End()

	var hash *string
	if user.PasswordHash != "" {
		hash = &user.PasswordHash
	}
	provider := user.Provider
	if provider == "" {
		provider = types.ProviderLocal
	}

	row := r.pgpool.QueryRow(ctx, `
		INSERT INTO users (phone, nickname, password_hash, avatar_url, email, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		user.Phone, user.Nickname, hash, user.AvatarURL, user.Email, provider, user.ProviderID)
	created, err := scanUser(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrConflict
		}
		r.recordError(ctx, span, "CreateUser", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *PostgresAuthRepo) GetUserByPhone(ctx context.Context, phone string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByPhone")
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.recordError(ctx, span, "GetUserByPhone", err)
		return nil, fmt.Errorf("failed to load user by phone: %w", err)
	}
	return u, err
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.recordError(ctx, span, "GetUserByID", err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, err
}

func (r *PostgresAuthRepo) GetUserByProvider(ctx context.Context, provider, providerID string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByProvider", trace.WithAttributes(
		attribute.String("user.provider", provider),
	))
	defer span.End()

	u, err := scanUser(r.pgpool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`, provider, providerID))
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.recordError(ctx, span, "GetUserByProvider", err)
		return nil, fmt.Errorf("failed to load user by provider: %w", err)
	}
	return u, err
}

func (r *PostgresAuthRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pgpool.Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID, token uuid.UUID, expiresAt time.Time) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "StoreRefreshToken")
	defer span.End()

	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt)
	if err != nil {
		r.recordError(ctx, span, "StoreRefreshToken", err)
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) ConsumeRefreshToken(ctx context.Context, token uuid.UUID) (uuid.UUID, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "ConsumeRefreshToken")
	defer span.End()

	var userID uuid.UUID
	err := r.pgpool.QueryRow(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > NOW()
		RETURNING user_id`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUnauthenticated
		}
		r.recordError(ctx, span, "ConsumeRefreshToken", err)
		return uuid.Nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return userID, nil
}

func (r *PostgresAuthRepo) RevokeRefreshToken(ctx context.Context, token uuid.UUID) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token = $1 AND revoked_at IS NULL`, token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
