package handlers

import (
	"net/http"

	apierrors "github.com/boardroom-ai/auth-service/internal/errors"
	"github.com/boardroom-ai/auth-service/internal/http/middleware"
	"github.com/boardroom-ai/auth-service/internal/models"
	"github.com/boardroom-ai/auth-service/internal/service"
)

// Register — POST /auth/register: создание учётной записи.
// Слабый пароль — 400 weak_password, занятый логин — 409 user_exists.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if in.Username == "" || in.Password == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	user, err := h.Auth.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.UserResponseFrom(user))
}

// ChangePassword — POST /auth/password/change: смена пароля текущего
// субъекта. Роут защищён middleware.Authenticate.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		apierrors.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	var in models.ChangePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if in.CurrentPassword == "" || in.NewPassword == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), user, in.CurrentPassword, in.NewPassword); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Login — POST /auth/login: вход по логину/паролю, выпуск пары токенов.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if in.Username == "" || in.Password == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	pair, uid, err := h.Auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponseFrom(pair, uid))
}

// Refresh — POST /auth/refresh: ротация пары по refresh-токену.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in models.RefreshRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if in.RefreshToken == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	pair, uid, err := h.Auth.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.TokenResponseFrom(pair, uid))
}

// Logout — POST /auth/logout: отзыв предъявленного access-токена.
// Токен берётся из Authorization: Bearer.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.AuthTokenFrom(r.Context())
	if token == "" {
		apierrors.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	if err := h.Auth.Logout(r.Context(), token); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Verify — POST /auth/verify: проверка предъявленного access-токена,
// возвращает учётную запись субъекта.
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	token := middleware.AuthTokenFrom(r.Context())
	if token == "" {
		apierrors.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	user, err := h.Auth.Verify(r.Context(), token)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.UserResponseFrom(user))
}

// Me — GET /auth/me: учётная запись текущего субъекта.
// Роут защищён middleware.Authenticate, user уже в контексте.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		apierrors.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	writeJSON(w, http.StatusOK, models.UserResponseFrom(user))
}

// PasswordStrength — POST /auth/password/strength: оценка сложности пароля.
// Эндпойнт не требует аутентификации: используется формами регистрации.
func (h *Handlers) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	var in models.PasswordStrengthRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	got := h.Auth.CheckPasswordStrength(in.Password)
	writeJSON(w, http.StatusOK, models.PasswordStrengthFrom(got))
}
