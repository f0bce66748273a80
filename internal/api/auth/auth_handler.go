package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-assistant/config"
	"github.com/FACorreiaa/go-travel-assistant/internal/api"
)

type AuthHandler struct {
	AuthService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		AuthService: authService,
	}
}

// ConfigureOAuth registers the goth providers that have credentials and the
// cookie store gothic keeps its state in. It reports whether any provider was
// enabled.
func ConfigureOAuth(cfg config.Config) bool {
	store := sessions.NewCookieStore([]byte(cfg.OAuth.SessionSecret))
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.Mode == "production"
	store.Options.MaxAge = 600
	gothic.Store = store

	var providers []goth.Provider
	if g := cfg.OAuth.Google; g.ClientID != "" && g.ClientSecret != "" {
		providers = append(providers, google.New(g.ClientID, g.ClientSecret, g.CallbackURL, "email", "profile"))
	}
	goth.UseProviders(providers...)
	return len(providers) > 0
}

// writeServiceError maps service errors onto status codes and user messages.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, unauthenticatedMsg string) {
	var vErr *validationError
	switch {
	case errors.As(err, &vErr):
		api.ErrorResponse(w, r, http.StatusBadRequest, vErr.msg)
	case errors.Is(err, ErrConflict):
		api.ErrorResponse(w, r, http.StatusConflict, "该手机号已被注册")
	case errors.Is(err, ErrUnauthenticated):
		api.ErrorResponse(w, r, http.StatusUnauthorized, unauthenticatedMsg)
	case errors.Is(err, ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "用户不存在或已禁用")
	default:
		api.ErrorResponse(w, r, http.StatusInternalServerError, "服务器内部错误")
	}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates an account with a phone number and password and returns a token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body RegisterRequest true "Registration details"
// @Success      201 {object} types.Response{data=AuthResponse}
// @Failure      400 {object} types.Response
// @Failure      409 {object} types.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register")
	defer span.End()
	l := h.logger.With(slog.String("handler", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
		return
	}

	resp, err := h.AuthService.Register(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) && !errors.Is(err, ErrConflict) {
			l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "registration failed")
		}
		writeServiceError(w, r, err, "认证失败")
		return
	}

	span.SetAttributes(attribute.String("user.id", resp.User.ID.String()))
	api.SuccessResponse(w, r, http.StatusCreated, resp)
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with phone and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body LoginRequest true "Credentials"
// @Success      200 {object} types.Response{data=AuthResponse}
// @Failure      400 {object} types.Response
// @Failure      401 {object} types.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()
	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "请求格式错误")
		return
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "手机号和密码不能为空")
		return
	}

	resp, err := h.AuthService.Login(ctx, req.Phone, req.Password)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "login failed")
		}
		writeServiceError(w, r, err, "手机号或密码错误")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, resp)
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new token pair. The old refresh token is revoked.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} types.Response{data=AuthResponse}
// @Failure      401 {object} types.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshToken")
	defer span.End()

	var req RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil || req.RefreshToken == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "refresh_token不能为空")
		return
	}

	resp, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			h.logger.ErrorContext(ctx, "Refresh failed", slog.Any("error", err))
			span.RecordError(err)
		}
		writeServiceError(w, r, err, "认证令牌无效或已过期")
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, resp)
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the supplied refresh token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} types.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout")
	defer span.End()

	var req RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil || req.RefreshToken == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "refresh_token不能为空")
		return
	}
	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			h.logger.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		}
		writeServiceError(w, r, err, "认证令牌无效或已过期")
		return
	}
	api.MessageResponse(w, r, http.StatusOK, "已退出登录")
}

// Verify godoc
// @Summary      Current user
// @Description  Returns the authenticated user's profile.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} types.Response{data=types.User}
// @Failure      401 {object} types.Response
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Verify")
	defer span.End()

	userID, ok := api.UserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
		return
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	user, err := h.AuthService.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.ErrorContext(ctx, "Failed to load user", slog.Any("error", err))
		}
		writeServiceError(w, r, err, "用户不存在或已禁用")
		return
	}
	if !user.IsActive {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "用户不存在或已禁用")
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, user)
}

// BeginOAuth godoc
// @Summary      Start OAuth login
// @Tags         Auth
// @Param        provider path string true "OAuth provider" example(google)
// @Success      307
// @Router       /auth/{provider} [get]
func (h *AuthHandler) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if _, err := goth.GetProvider(provider); err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "不支持的登录方式")
		return
	}
	gothic.BeginAuthHandler(w, gothic.GetContextWithProvider(r, provider))
}

// OAuthCallback godoc
// @Summary      OAuth callback
// @Tags         Auth
// @Produce      json
// @Param        provider path string true "OAuth provider" example(google)
// @Success      200 {object} types.Response{data=AuthResponse}
// @Failure      401 {object} types.Response
// @Router       /auth/{provider}/callback [get]
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "OAuthCallback",
		trace.WithAttributes(attribute.String("oauth.provider", provider)))
	defer span.End()
	l := h.logger.With(slog.String("handler", "OAuthCallback"), slog.String("provider", provider))

	r = gothic.GetContextWithProvider(r.WithContext(ctx), provider)
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		l.WarnContext(ctx, "OAuth exchange failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusUnauthorized, "第三方登录失败")
		return
	}

	resp, err := h.AuthService.GetOrCreateUserFromProvider(ctx, gothUser)
	if err != nil {
		l.ErrorContext(ctx, "Could not sign in provider user", slog.Any("error", err))
		span.SetStatus(codes.Error, "provider sign-in failed")
		writeServiceError(w, r, err, "用户不存在或已禁用")
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, resp)
}
