package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/markbates/goth"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-travel-assistant/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, phone, password string) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	GetOrCreateUserFromProvider(ctx context.Context, providerUser goth.User) (*AuthResponse, error)
}

type AuthServiceImpl struct {
	repo       AuthRepo
	tokens     *TokenManager
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(repo AuthRepo, tokens *TokenManager, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		repo:       repo,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	l := s.logger.With(slog.String("method", "Register"))
	status := "error"
	defer func() {
		metrics.Get().RegisterRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}()

	if err := req.normalize(); err != nil {
		status = "invalid"
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	phone := req.Phone
	user, err := s.repo.CreateUser(ctx, &types.User{
		Phone:        &phone,
		Nickname:     req.Nickname,
		PasswordHash: string(hash),
		Provider:     types.ProviderLocal,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			status = "conflict"
		}
		return nil, err
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	status = "success"
	l.InfoContext(ctx, "User registered", slog.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, phone, password string) (*AuthResponse, error) {
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive || user.PasswordHash == "" {
		return nil, ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		l.WarnContext(ctx, "Password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrUnauthenticated
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		l.WarnContext(ctx, "Could not record last login", slog.Any("error", err))
	}
	return s.issue(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	userID, err := s.repo.ConsumeRefreshToken(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return s.issue(ctx, user)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	token, err := uuid.Parse(refreshToken)
	if err != nil {
		return invalid("refresh_token格式不正确")
	}
	return s.repo.RevokeRefreshToken(ctx, token)
}

func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// GetOrCreateUserFromProvider signs in an OAuth user, creating the account on
// first login.
func (s *AuthServiceImpl) GetOrCreateUserFromProvider(ctx context.Context, gu goth.User) (*AuthResponse, error) {
	l := s.logger.With(slog.String("method", "GetOrCreateUserFromProvider"), slog.String("provider", gu.Provider))

	if gu.Provider == "" || gu.UserID == "" {
		return nil, invalid("第三方账号信息不完整")
	}

	user, err := s.repo.GetUserByProvider(ctx, gu.Provider, gu.UserID)
	if errors.Is(err, ErrNotFound) {
		user, err = s.repo.CreateUser(ctx, providerUser(gu))
		if err == nil {
			l.InfoContext(ctx, "Created user from provider", slog.String("user_id", user.ID.String()))
		}
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return s.issue(ctx, user)
}

func providerUser(gu goth.User) *types.User {
	nickname := gu.NickName
	if nickname == "" {
		nickname = gu.Name
	}
	if nickname == "" {
		nickname = "用户"
	}
	providerID := gu.UserID
	u := &types.User{
		Nickname:   nickname,
		Provider:   gu.Provider,
		ProviderID: &providerID,
	}
	if gu.AvatarURL != "" {
		avatar := gu.AvatarURL
		u.AvatarURL = &avatar
	}
	if gu.Email != "" {
		email := gu.Email
		u.Email = &email
	}
	return u
}

func (s *AuthServiceImpl) issue(ctx context.Context, user *types.User) (*AuthResponse, error) {
	access, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	refresh := uuid.New()
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refresh, s.now().Add(s.tokens.RefreshTTL())); err != nil {
		return nil, err
	}
	return &AuthResponse{
		TokenPair: types.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh.String(),
			ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
		User: user,
	}, nil
}
