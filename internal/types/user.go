package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ProviderLocal = "local"

// User is an account created by phone registration or an OAuth provider.
type User struct {
	ID           uuid.UUID  `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"`
	Phone        *string    `json:"phone,omitempty" example:"13800138000"`
	Nickname     string     `json:"nickname" example:"用户8000"`
	PasswordHash string     `json:"-"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Provider     string     `json:"provider" example:"local"`
	ProviderID   *string    `json:"-"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Claims are carried by access tokens.
type Claims struct {
	UserID   string `json:"user_id"`
	Phone    string `json:"phone,omitempty"`
	Nickname string `json:"nickname"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenPair is returned by every successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJI..."`
	RefreshToken string `json:"refresh_token" example:"4f1b2c8e-..."`
	ExpiresIn    int64  `json:"expires_in" example:"86400"`
	TokenType    string `json:"token_type" example:"Bearer"`
}
