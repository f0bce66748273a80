package auth

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrInvalidInput    = errors.New("invalid input")
)

const (
	maxPasswordRunes = 128
	maxNicknameRunes = 50
	scopeUser        = "user"
)

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

type RegisterRequest struct {
	Phone    string `json:"phone" example:"13800138000"`
	Password string `json:"password" example:"secret123"`
	Nickname string `json:"nickname,omitempty" example:"旅行者"`
}

type LoginRequest struct {
	Phone    string `json:"phone" example:"13800138000"`
	Password string `json:"password" example:"secret123"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"4f1b2c8e-..."`
}

// AuthResponse is returned by register, login, refresh and OAuth callbacks.
type AuthResponse struct {
	types.TokenPair
	User *types.User `json:"user"`
}

// validationError carries the message shown to the client.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrInvalidInput }

func invalid(msg string) error { return &validationError{msg: msg} }

// normalize trims the request and fills the default nickname.
func (r *RegisterRequest) normalize() error {
	r.Phone = strings.TrimSpace(r.Phone)
	r.Password = strings.TrimSpace(r.Password)
	r.Nickname = strings.TrimSpace(r.Nickname)

	if r.Phone == "" || r.Password == "" {
		return invalid("手机号和密码不能为空")
	}
	if !phonePattern.MatchString(r.Phone) {
		return invalid("请输入正确的11位手机号")
	}
	if utf8.RuneCountInString(r.Password) > maxPasswordRunes {
		return invalid("密码长度不能超过128位")
	}
	if r.Nickname == "" {
		r.Nickname = "用户" + r.Phone[len(r.Phone)-4:]
	}
	if utf8.RuneCountInString(r.Nickname) > maxNicknameRunes {
		return invalid("昵称长度不能超过50个字符")
	}
	return nil
}
