package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-travel-assistant/internal/api"
)

// Authenticate validates the Bearer access token and stores the user id on
// the request context.
func Authenticate(logger *slog.Logger, tokens *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenString) == "" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "未提供认证令牌")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(tokenString))
			if err != nil {
				if !errors.Is(err, ErrTokenExpired) {
					l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
				}
				api.ErrorResponse(w, r, http.StatusUnauthorized, "认证令牌无效或已过期")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "认证令牌无效或已过期")
				return
			}

			next.ServeHTTP(w, r.WithContext(api.WithUserID(ctx, userID)))
		})
	}
}
