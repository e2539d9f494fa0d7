package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/boardroom-ai/auth-service/internal/password"
)

// DTO HTTP-слоя и конвертеры из доменных типов.
// Доменные структуры наружу не отдаются: у User есть PasswordHash.

// LoginRequest — тело POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest — тело POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest — тело POST /auth/password/change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// RefreshRequest — тело POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordStrengthRequest — тело POST /auth/password/strength.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// TokenResponse — выпущенная пара токенов.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
}

// TokenResponseFrom конвертирует доменную пару токенов в DTO.
func TokenResponseFrom(p *TokenPair, uid uuid.UUID) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresAt:    p.AccessExpiresAt,
		UserID:       uid.String(),
	}
}

// PasswordStrengthResponse — результат оценки пароля.
type PasswordStrengthResponse struct {
	Valid  bool     `json:"valid"`
	Tier   string   `json:"tier"`
	Errors []string `json:"errors,omitempty"`
}

// PasswordStrengthFrom конвертирует доменную оценку в DTO.
func PasswordStrengthFrom(s password.Strength) PasswordStrengthResponse {
	return PasswordStrengthResponse{
		Valid:  s.Valid,
		Tier:   string(s.Tier),
		Errors: s.Errors,
	}
}

// UserResponse — публичное представление учётной записи.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UserResponseFrom конвертирует доменную учётную запись в DTO.
func UserResponseFrom(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// StatusResponse — ответ операций без данных (logout).
type StatusResponse struct {
	Status string `json:"status"`
}
