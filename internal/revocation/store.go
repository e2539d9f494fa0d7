// revocation реализует кластерное хранилище отозванных токенов поверх Redis.
//
// Ключ — хэш токена, TTL — остаток жизни токена: запись самоуничтожается
// одновременно с истечением самого токена и не живёт дольше, чем нужно.
//
// Политика при недоступности Redis настраивается (fail-open/fail-closed).
// Fail-open: IsRevoked отвечает "не отозван", Revoke молча пишет warning —
// доступность ставится выше полноты отзыва.
package revocation

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boardroom-ai/auth-service/internal/pkg/log"
)

// Store — контракт хранилища отозванных токенов.
type Store interface {
	// Revoke помечает токен отозванным на ttl; ttl <= 0 — no-op
	// (токен уже недействителен по сроку).
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	// IsRevoked отвечает, отозван ли токен; одиночный точечный lookup.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisStore — реализация Store поверх Redis.
type RedisStore struct {
	rdb      *redis.Client
	prefix   string
	failOpen bool
}

// NewRedisStore создаёт хранилище. Если prefix пустой — используется "auth:bl:".
func NewRedisStore(rdb *redis.Client, prefix string, failOpen bool) *RedisStore {
	if prefix == "" {
		prefix = "auth:bl:"
	}

	return &RedisStore{rdb: rdb, prefix: prefix, failOpen: failOpen}
}

// key — сам токен в Redis не храним, только его sha256 в base64url.
func (s *RedisStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + base64.RawURLEncoding.EncodeToString(sum[:])
}

// Revoke записывает отметку об отзыве с TTL, равным остатку жизни токена.
// Повторный отзыв того же токена идемпотентен.
func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	const op = "revocation.RedisStore.Revoke"

	if ttl <= 0 {
		return nil
	}

	if err := s.rdb.Set(ctx, s.key(token), "1", ttl).Err(); err != nil {
		if s.failOpen {
			log.From(ctx).Warn("revocation_store_unavailable",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsRevoked проверяет наличие отметки об отзыве.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "revocation.RedisStore.IsRevoked"

	n, err := s.rdb.Exists(ctx, s.key(token)).Result()
	if err != nil {
		if s.failOpen {
			log.From(ctx).Warn("revocation_store_unavailable",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

var _ Store = (*RedisStore)(nil)
