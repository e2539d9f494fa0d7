// ratelimit реализует fixed-window rate-лимитер поверх Redis.
//
// Счётчики ведутся по составному ключу (subject, action, окно, индекс окна),
// TTL ключа равен размеру окна — бакеты самоочищаются по границе окна.
// Burst на стыке двух окон может пропустить до ~2x номинального лимита;
// это принятое свойство fixed-window, скользящее окно не используется.
//
// Инкремент и установка TTL выполняются одним атомарным раундтрипом
// (MULTI/EXEC: INCR + EXPIRE NX), бессмертный ключ при падении между
// вызовами невозможен.
//
// При недоступности Redis политика настраивается (fail-open/fail-closed);
// при выключенном лимитировании Allow всегда отвечает true.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boardroom-ai/auth-service/internal/pkg/log"
)

// Limiter — контракт rate-лимитера.
type Limiter interface {
	// Allow атомарно инкрементирует счётчики всех окон для (subject, action)
	// и отвечает, допущено ли действие. Счётчики уже инкрементированных окон
	// при отказе не откатываются (задокументированный over-count).
	Allow(ctx context.Context, subject, action string) (bool, error)
}

// Limits — лимиты на фиксированные окна; 0 отключает проверку окна.
type Limits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// Options — параметры лимитера.
type Options struct {
	// Prefix — префикс ключей; по умолчанию "auth:rl:".
	Prefix string
	// Enabled — при false Allow всегда отвечает true.
	Enabled bool
	// FailOpen — политика при недоступности Redis.
	FailOpen bool
	// Default — лимиты для действий без явной настройки.
	Default Limits
	// PerAction — переопределение лимитов по имени действия
	// (например, "login" жёстче, чем generic "api").
	PerAction map[string]Limits
}

// RedisLimiter — реализация Limiter поверх Redis.
type RedisLimiter struct {
	rdb  *redis.Client
	opts Options
	now  func() time.Time
}

// NewRedisLimiter создаёт лимитер.
func NewRedisLimiter(rdb *redis.Client, opts Options) *RedisLimiter {
	if opts.Prefix == "" {
		opts.Prefix = "auth:rl:"
	}

	return &RedisLimiter{rdb: rdb, opts: opts, now: time.Now}
}

// SetClock подменяет источник времени (для тестов).
func (l *RedisLimiter) SetClock(now func() time.Time) {
	if now != nil {
		l.now = now
	}
}

type window struct {
	name  string
	size  time.Duration
	limit int
}

func (l *RedisLimiter) windows(action string) []window {
	limits := l.opts.Default
	if override, ok := l.opts.PerAction[action]; ok {
		limits = override
	}

	all := []window{
		{name: "minute", size: time.Minute, limit: limits.PerMinute},
		{name: "hour", size: time.Hour, limit: limits.PerHour},
		{name: "day", size: 24 * time.Hour, limit: limits.PerDay},
	}

	ws := all[:0]
	for _, w := range all {
		if w.limit > 0 {
			ws = append(ws, w)
		}
	}

	return ws
}

// Allow проверяет лимиты всех сконфигурированных окон для (subject, action).
func (l *RedisLimiter) Allow(ctx context.Context, subject, action string) (bool, error) {
	const op = "ratelimit.RedisLimiter.Allow"

	if !l.opts.Enabled {
		return true, nil
	}

	now := l.now().UTC().Unix()

	for _, w := range l.windows(action) {
		idx := now / int64(w.size/time.Second)
		key := fmt.Sprintf("%s%s:%s:%s:%d", l.opts.Prefix, subject, action, w.name, idx)

		// Один атомарный раундтрип: INCR + EXPIRE NX в MULTI/EXEC.
		pipe := l.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, w.size)

		if _, err := pipe.Exec(ctx); err != nil {
			if l.opts.FailOpen {
				log.From(ctx).Warn("rate_limit_store_unavailable",
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
				return true, nil
			}

			return false, fmt.Errorf("%s: %w", op, err)
		}

		if incr.Val() > int64(w.limit) {
			log.From(ctx).Warn("rate_limit_exceeded",
				slog.String("op", op),
				slog.String("subject", subject),
				slog.String("action", action),
				slog.String("window", w.name),
			)
			return false, nil
		}
	}

	return true, nil
}

var _ Limiter = (*RedisLimiter)(nil)
