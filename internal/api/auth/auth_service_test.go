package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByPhone(ctx context.Context, phone string) (*types.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) GetUserByProvider(ctx context.Context, provider, providerID string) (*types.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockAuthRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID, token uuid.UUID, expiresAt time.Time) error {
	return m.Called(ctx, userID, token, expiresAt).Error(0)
}

func (m *MockAuthRepo) ConsumeRefreshToken(ctx context.Context, token uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthRepo) RevokeRefreshToken(ctx context.Context, token uuid.UUID) error {
	return m.Called(ctx, token).Error(0)
}

func newTestService(repo AuthRepo) *AuthServiceImpl {
	svc := NewAuthService(repo, NewTokenManager(testJWTConfig()), slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success with default nickname", func(t *testing.T) {
		repo := new(MockAuthRepo)
		svc := newTestService(repo)
		user := testUser()

		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *types.User) bool {
			return *u.Phone == "13800138000" &&
				u.Nickname == "用户8000" &&
				u.Provider == types.ProviderLocal &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) == nil
		})).Return(user, nil).Once()
		repo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		resp, err := svc.Register(ctx, RegisterRequest{Phone: " 13800138000 ", Password: "secret123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(3600), resp.ExpiresIn)
		assert.Equal(t, user, resp.User)
		repo.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []struct {
			name string
			req  RegisterRequest
			msg  string
		}{
			{"empty", RegisterRequest{}, "手机号和密码不能为空"},
			{"missing password", RegisterRequest{Phone: "13800138000"}, "手机号和密码不能为空"},
			{"short phone", RegisterRequest{Phone: "1380013800", Password: "x"}, "请输入正确的11位手机号"},
			{"bad prefix", RegisterRequest{Phone: "12800138000", Password: "x"}, "请输入正确的11位手机号"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := new(MockAuthRepo)
				_, err := newTestService(repo).Register(ctx, tc.req)
				require.ErrorIs(t, err, ErrInvalidInput)
				assert.Equal(t, tc.msg, err.Error())
				repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("duplicate phone", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("CreateUser", ctx, mock.Anything).Return(nil, ErrConflict).Once()

		_, err := newTestService(repo).Register(ctx, RegisterRequest{Phone: "13800138000", Password: "secret123"})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockAuthRepo)
		user := testUser()
		user.PasswordHash = hashed(t, "secret123")

		repo.On("GetUserByPhone", ctx, "13800138000").Return(user, nil).Once()
		repo.On("UpdateLastLogin", ctx, user.ID).Return(nil).Once()
		repo.On("StoreRefreshToken", ctx, user.ID, mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := newTestService(repo).Login(ctx, "13800138000", "secret123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, resp.User.ID)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockAuthRepo)
		user := testUser()
		user.PasswordHash = hashed(t, "secret123")
		repo.On("GetUserByPhone", ctx, "13800138000").Return(user, nil).Once()

		_, err := newTestService(repo).Login(ctx, "13800138000", "nope")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		repo.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown phone", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("GetUserByPhone", ctx, "13900000000").Return(nil, ErrNotFound).Once()

		_, err := newTestService(repo).Login(ctx, "13900000000", "secret123")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("disabled account", func(t *testing.T) {
		repo := new(MockAuthRepo)
		user := testUser()
		user.IsActive = false
		user.PasswordHash = hashed(t, "secret123")
		repo.On("GetUserByPhone", ctx, "13800138000").Return(user, nil).Once()

		_, err := newTestService(repo).Login(ctx, "13800138000", "secret123")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockAuthRepo)
		dbErr := errors.New("connection reset")
		repo.On("GetUserByPhone", ctx, "13800138000").Return(nil, dbErr).Once()

		_, err := newTestService(repo).Login(ctx, "13800138000", "secret123")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	old := uuid.New()

	t.Run("rotates", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("ConsumeRefreshToken", ctx, old).Return(user.ID, nil).Once()
		repo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
		repo.On("StoreRefreshToken", ctx, user.ID, mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := newTestService(repo).Refresh(ctx, old.String())
		require.NoError(t, err)
		assert.NotEqual(t, old.String(), resp.RefreshToken)
		repo.AssertExpectations(t)
	})

	t.Run("malformed token", func(t *testing.T) {
		repo := new(MockAuthRepo)
		_, err := newTestService(repo).Refresh(ctx, "abc")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("revoked token", func(t *testing.T) {
		repo := new(MockAuthRepo)
		repo.On("ConsumeRefreshToken", ctx, old).Return(uuid.Nil, ErrUnauthenticated).Once()
		_, err := newTestService(repo).Refresh(ctx, old.String())
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	token := uuid.New()

	repo := new(MockAuthRepo)
	repo.On("RevokeRefreshToken", ctx, token).Return(nil).Once()
	svc := newTestService(repo)

	require.NoError(t, svc.Logout(ctx, token.String()))
	assert.ErrorIs(t, svc.Logout(ctx, "abc"), ErrInvalidInput)
	repo.AssertExpectations(t)
}

func TestAuthService_GetOrCreateUserFromProvider(t *testing.T) {
	ctx := context.Background()
	gu := goth.User{Provider: "google", UserID: "g-123", Name: "Li Lei", Email: "li@example.com"}

	t.Run("existing user", func(t *testing.T) {
		repo := new(MockAuthRepo)
		user := testUser()
		repo.On("GetUserByProvider", ctx, "google", "g-123").Return(user, nil).Once()
		repo.On("StoreRefreshToken", ctx, user.ID, mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := newTestService(repo).GetOrCreateUserFromProvider(ctx, gu)
		require.NoError(t, err)
		assert.Equal(t, user, resp.User)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("first login creates account", func(t *testing.T) {
		repo := new(MockAuthRepo)
		created := testUser()
		created.Phone = nil
		repo.On("GetUserByProvider", ctx, "google", "g-123").Return(nil, ErrNotFound).Once()
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *types.User) bool {
			return u.Provider == "google" && *u.ProviderID == "g-123" &&
				u.Nickname == "Li Lei" && *u.Email == "li@example.com" && u.PasswordHash == ""
		})).Return(created, nil).Once()
		repo.On("StoreRefreshToken", ctx, created.ID, mock.Anything, mock.Anything).Return(nil).Once()

		_, err := newTestService(repo).GetOrCreateUserFromProvider(ctx, gu)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("incomplete provider user", func(t *testing.T) {
		_, err := newTestService(new(MockAuthRepo)).GetOrCreateUserFromProvider(ctx, goth.User{Provider: "google"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
