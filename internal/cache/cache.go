// cache создаёт клиент Redis — общий backing-кэш для хранилища отозванных
// токенов и счётчиков rate-лимитера. Кэш разделяется всеми инстансами
// сервиса, поэтому отзыв и лимиты действуют на весь кластер.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Ping выполняется сразу — fail-fast на старте процесса.
func New(ctx context.Context, redisURL string) (*redis.Client, error) {
	const op = "cache.New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rdb, nil
}
