package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/boardroom-ai/auth-service/internal/audit"
	"github.com/boardroom-ai/auth-service/internal/models"
	"github.com/boardroom-ai/auth-service/internal/password"
	"github.com/boardroom-ai/auth-service/internal/pkg/log"
	"github.com/boardroom-ai/auth-service/internal/pkg/redact"
	"github.com/boardroom-ai/auth-service/internal/storage"
	"github.com/boardroom-ai/auth-service/internal/token"
)

// Register создаёт новую активную учётную запись.
//
// Пароль проходит политику сложности до хэширования; занятый логин
// возвращается как ErrUserExists.
func (s *Service) Register(ctx context.Context, username, pw string) (*models.User, error) {
	const op = "service.auth.Register"

	if check := password.Check(pw); !check.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	hash, err := password.Hash(pw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.emit(ctx, "register", user.ID.String(), "success")

	return user, nil
}

// ChangePassword меняет пароль учётной записи текущего субъекта.
//
// Текущий пароль обязателен (неверный — ErrInvalidCredentials, без
// уточнений), новый проходит политику сложности.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	const op = "service.auth.ChangePassword"

	if !password.Verify(current, user.PasswordHash) {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if check := password.Check(next); !check.Valid {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	hash, err := password.Hash(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePassword(ctx, user.ID, hash, s.now().UTC()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.emit(ctx, "password_change", user.ID.String(), "success")

	return nil
}

// Login выполняет вход по логину и паролю и выпускает пару токенов.
//
// Порядок проверок: учётная запись → пароль → активность → rate-лимит.
// Отсутствие пользователя и неверный пароль неразличимы для вызывающего
// (единый ErrInvalidCredentials).
func (s *Service) Login(ctx context.Context, username, pw string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.Login"

	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.emit(ctx, "login", username, "failed")
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if !password.Verify(pw, user.PasswordHash) {
		s.emit(ctx, "login", username, "failed")
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.Active {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInactiveUser)
	}

	allowed, err := s.limiter.Allow(ctx, user.ID.String(), "login")
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	if !allowed {
		s.emit(ctx, "login", user.ID.String(), "rate_limited")
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	// Отметка последнего входа best-effort: токены уже выпущены,
	// вход не блокируем.
	if err := s.storage.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		log.From(ctx).Warn("last_login_update_failed",
			slog.String("op", op),
			slog.String("username", redact.Username(username)),
			slog.String("err", err.Error()),
		)
	}

	s.emit(ctx, "login", user.ID.String(), "success")

	return pair, user.ID, nil
}

// Refresh выпускает новую пару токенов по валидному refresh-токену и
// отзывает использованный (single-use rotation).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.auth.Refresh"

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Kind != token.KindRefresh {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	revoked, err := s.revocations.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	uid, err := claims.UserID()
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Active {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInactiveUser)
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	// Ротация: использованный refresh-токен отзывается на остаток срока.
	// Сбой отзыва логируется, но новую пару не блокирует — доступность
	// важнее строгого single-use.
	ttl := claims.RemainingLifetime(s.now().UTC())
	if err := s.revocations.Revoke(ctx, refreshToken, ttl); err != nil {
		log.From(ctx).Warn("refresh_rotation_revoke_failed",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
	}

	s.emit(ctx, "refresh", user.ID.String(), "success")

	return pair, user.ID, nil
}

// Logout отзывает access-токен на остаток его срока.
//
// Уже истёкший токен не отзывается: он и так недействителен, запись об
// отзыве не нужна. Событие аудита фиксируется в обоих случаях.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	const op = "service.auth.Logout"

	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			// Отзывать нечего, но событие выхода фиксируем.
			if claims != nil {
				s.emit(ctx, "logout", claims.Subject, "success")
			}

			return nil
		}

		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	ttl := claims.RemainingLifetime(s.now().UTC())
	if err := s.revocations.Revoke(ctx, accessToken, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.emit(ctx, "logout", claims.Subject, "success")

	return nil
}

// Verify проверяет access-токен и возвращает учётную запись субъекта.
// Вызывается на каждый защищённый запрос.
func (s *Service) Verify(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.auth.Verify"

	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Kind != token.KindAccess {
		return nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	revoked, err := s.revocations.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	uid, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Active {
		return nil, fmt.Errorf("%s: %w", op, ErrInactiveUser)
	}

	return user, nil
}

// AllowRequest проверяет generic-лимит запросов для субъекта
// (действие "api"); используется транспортным слоем на защищённых роутах.
func (s *Service) AllowRequest(ctx context.Context, subject string) error {
	const op = "service.auth.AllowRequest"

	allowed, err := s.limiter.Allow(ctx, subject, "api")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !allowed {
		return fmt.Errorf("%s: %w", op, ErrRateLimited)
	}

	return nil
}

// CheckPasswordStrength оценивает пароль по политике сложности.
func (s *Service) CheckPasswordStrength(pw string) password.Strength {
	return password.Check(pw)
}

// issuePair выпускает новую пару access+refresh токенов.
func (s *Service) issuePair(uid uuid.UUID) (*models.TokenPair, error) {
	const op = "service.auth.issuePair"

	access, accessExp, err := s.codec.Issue(uid, token.KindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, _, err := s.codec.Issue(uid, token.KindRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		TokenType:       "bearer",
		AccessExpiresAt: accessExp,
	}, nil
}

// emit публикует событие аудита best-effort.
func (s *Service) emit(ctx context.Context, action, subject, outcome string) {
	if s.audit == nil {
		return
	}

	e := audit.Event{
		Action:  action,
		Subject: subject,
		Outcome: outcome,
		At:      s.now().UTC(),
	}

	if err := s.audit.Emit(ctx, e); err != nil {
		log.From(ctx).Warn("audit_emit_failed",
			slog.String("event", e.Name()),
			slog.String("err", err.Error()),
		)
	}
}
