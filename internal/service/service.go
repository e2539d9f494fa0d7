// service содержит бизнес-логику auth-сервиса: вход, ротацию refresh-токенов,
// выход и верификацию access-токенов, оркеструя кодек токенов, хранилище
// учётных записей, хранилище отозванных токенов и rate-лимитер.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования при потокобезопасных зависимостях.
//   - Все зависимости (хранилище, кэш отзыва, лимитер, аудит, часы)
//     внедряются явно — глобального состояния нет, в тестах подменяются
//     дублёрами.
//   - Ошибки возвращаются как сентинелы и далее маппятся транспортом
//     на HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"time"

	"github.com/boardroom-ai/auth-service/internal/audit"
	"github.com/boardroom-ai/auth-service/internal/config"
	"github.com/boardroom-ai/auth-service/internal/ratelimit"
	"github.com/boardroom-ai/auth-service/internal/revocation"
	"github.com/boardroom-ai/auth-service/internal/storage"
	"github.com/boardroom-ai/auth-service/internal/token"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь
	// не найден; сообщение единое, чтобы не допустить перечисление логинов.
	// Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveUser — учётная запись деактивирована.
	// Транспорт: HTTP 403.
	ErrInactiveUser = errors.New("inactive user")

	// ErrRateLimited — превышен лимит попыток для (subject, action).
	// Транспорт: HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidToken — токен не декодируется: битый формат, неверная
	// подпись или истёкший срок. Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenRevoked — токен отозван (logout/rotation) и недействителен
	// независимо от остатка срока. Транспорт: HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrWrongTokenType — предъявлен токен не того вида (refresh вместо
	// access или наоборот). Транспорт: HTTP 401.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrUserExists — логин уже занят. Транспорт: HTTP 409.
	ErrUserExists = errors.New("user already exists")

	// ErrWeakPassword — пароль не проходит политику сложности.
	// Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("weak password")
)

// Service описывает бизнес-логику auth-сервиса.
type Service struct {
	storage     storage.UserStorage
	codec       *token.Codec
	revocations revocation.Store
	limiter     ratelimit.Limiter
	audit       audit.Sink
	cfg         config.AuthConfig
	now         func() time.Time
}

// New создаёт новый экземпляр Service с явными зависимостями.
func New(st storage.UserStorage, rev revocation.Store, rl ratelimit.Limiter, sink audit.Sink, cfg config.AuthConfig) *Service {
	return &Service{
		storage:     st,
		codec:       token.NewCodec(cfg.JWTSecret, cfg.Issuer),
		revocations: rev,
		limiter:     rl,
		audit:       sink,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetClock подменяет источник времени сервиса и кодека (для тестов).
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
		s.codec.SetClock(now)
	}
}
