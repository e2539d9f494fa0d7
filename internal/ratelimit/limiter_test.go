package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func startRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func testOptions() Options {
	return Options{
		Enabled:  true,
		FailOpen: true,
		Default:  Limits{PerMinute: 60, PerHour: 1000, PerDay: 10000},
		PerAction: map[string]Limits{
			"login": {PerMinute: 5, PerHour: 20, PerDay: 100},
		},
	}
}

// фиксированный момент времени, чтобы индекс окна не менялся посреди теста.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestAllow_LoginLimitPerMinute(t *testing.T) {
	t.Parallel()

	_, rdb := startRedis(t)
	l := NewRedisLimiter(rdb, testOptions())

	base := time.Date(2025, 3, 1, 10, 0, 10, 0, time.UTC)
	l.SetClock(fixedClock(base))

	ctx := context.Background()

	// Попытки 1–5 в одном минутном окне проходят.
	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "alice", "login")
		require.NoError(t, err)
		require.True(t, ok, "attempt %d", i+1)
	}

	// Шестая — отклоняется.
	ok, err := l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.False(t, ok)

	// Следующее минутное окно обнуляет счёт.
	l.SetClock(fixedClock(base.Add(time.Minute)))
	ok, err = l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAllow_IndependentPerSubjectAndAction(t *testing.T) {
	t.Parallel()

	_, rdb := startRedis(t)
	l := NewRedisLimiter(rdb, testOptions())
	l.SetClock(fixedClock(time.Date(2025, 3, 1, 10, 0, 10, 0, time.UTC)))

	ctx := context.Background()

	// Исчерпываем login-лимит alice.
	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "alice", "login")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.False(t, ok)

	// bob не затронут.
	ok, err = l.Allow(ctx, "bob", "login")
	require.NoError(t, err)
	require.True(t, ok)

	// Generic api-действие alice тоже не затронуто (другой лимит и ключи).
	ok, err = l.Allow(ctx, "alice", "api")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAllow_BucketTTLEqualsWindowSize(t *testing.T) {
	t.Parallel()

	mr, rdb := startRedis(t)
	l := NewRedisLimiter(rdb, testOptions())
	l.SetClock(fixedClock(time.Date(2025, 3, 1, 10, 0, 10, 0, time.UTC)))

	ctx := context.Background()

	ok, err := l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.True(t, ok)

	// По ключу каждого окна выставлен TTL, равный размеру окна.
	var gotTTLs []time.Duration
	for _, key := range mr.Keys() {
		gotTTLs = append(gotTTLs, mr.TTL(key))
	}
	require.ElementsMatch(t, []time.Duration{time.Minute, time.Hour, 24 * time.Hour}, gotTTLs)

	// Повторный инкремент не продлевает TTL существующего бакета (EXPIRE NX).
	mr.FastForward(10 * time.Second)
	ok, err = l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.True(t, ok)

	for _, key := range mr.Keys() {
		require.LessOrEqual(t, mr.TTL(key), 24*time.Hour-10*time.Second)
	}
}

func TestAllow_HourWindowRejectsAfterLimit(t *testing.T) {
	t.Parallel()

	_, rdb := startRedis(t)
	opts := testOptions()
	opts.PerAction["login"] = Limits{PerMinute: 100, PerHour: 3, PerDay: 100}
	l := NewRedisLimiter(rdb, opts)

	base := time.Date(2025, 3, 1, 10, 0, 10, 0, time.UTC)
	l.SetClock(fixedClock(base))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "alice", "login")
		require.NoError(t, err)
		require.True(t, ok)
	}

	// Часовой лимит исчерпан, хотя минутный ещё нет.
	ok, err := l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAllow_Disabled(t *testing.T) {
	t.Parallel()

	mr, rdb := startRedis(t)
	opts := testOptions()
	opts.Enabled = false
	l := NewRedisLimiter(rdb, opts)

	ctx := context.Background()

	for i := 0; i < 50; i++ {
		ok, err := l.Allow(ctx, "alice", "login")
		require.NoError(t, err)
		require.True(t, ok)
	}

	// Счётчики даже не создаются.
	require.Empty(t, mr.Keys())
}

func TestAllow_FailOpen_StoreUnavailable(t *testing.T) {
	t.Parallel()

	mr, rdb := startRedis(t)
	l := NewRedisLimiter(rdb, testOptions())

	mr.Close()

	ok, err := l.Allow(context.Background(), "alice", "login")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAllow_FailClosed_StoreUnavailable(t *testing.T) {
	t.Parallel()

	mr, rdb := startRedis(t)
	opts := testOptions()
	opts.FailOpen = false
	l := NewRedisLimiter(rdb, opts)

	mr.Close()

	ok, err := l.Allow(context.Background(), "alice", "login")
	require.Error(t, err)
	require.False(t, ok)
}

func TestAllow_NoRollbackOnReject(t *testing.T) {
	t.Parallel()

	mr, rdb := startRedis(t)
	opts := testOptions()
	opts.PerAction["login"] = Limits{PerMinute: 1, PerHour: 10, PerDay: 10}
	l := NewRedisLimiter(rdb, opts)

	base := time.Date(2025, 3, 1, 10, 0, 10, 0, time.UTC)
	l.SetClock(fixedClock(base))
	ctx := context.Background()

	ok, err := l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.True(t, ok)

	// Отказ по минутному окну: его счётчик уже инкрементирован и не
	// откатывается (задокументированный over-count).
	ok, err = l.Allow(ctx, "alice", "login")
	require.NoError(t, err)
	require.False(t, ok)

	minuteKey := ""
	for _, key := range mr.Keys() {
		if mr.TTL(key) == time.Minute {
			minuteKey = key
		}
	}
	require.NotEmpty(t, minuteKey)
	got, err := rdb.Get(ctx, minuteKey).Int64()
	require.NoError(t, err)
	require.Equal(t, int64(2), got)
}
