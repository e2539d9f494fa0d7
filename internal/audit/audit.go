// audit задаёт контракт append-only журнала событий безопасности и его
// реализацию поверх структурированных логов.
//
// Сами события владеются внешним аудит-хранилищем; сервис только
// публикует их best-effort: ошибка публикации не прерывает бизнес-поток.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/boardroom-ai/auth-service/internal/pkg/log"
)

// Event — одно событие аудита.
type Event struct {
	// Action — имя действия: login, refresh, logout.
	Action string
	// Subject — идентификатор субъекта (user id; для неуспешного логина —
	// предъявленный логин).
	Subject string
	// Outcome — исход: success, failed, rate_limited.
	Outcome string
	// At — момент события (UTC).
	At time.Time
}

// Name — каноническое имя события вида "<action>_<outcome>"
// (login_success, login_failed, ...).
func (e Event) Name() string {
	return e.Action + "_" + e.Outcome
}

// Sink — контракт приёмника событий аудита.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// LogSink публикует события аудита в структурированный лог процесса.
type LogSink struct{}

// NewLogSink создаёт slog-приёмник аудита.
func NewLogSink() *LogSink { return &LogSink{} }

// Emit пишет событие одной строкой уровня Info.
func (s *LogSink) Emit(ctx context.Context, e Event) error {
	log.From(ctx).Info("audit",
		slog.String("event", e.Name()),
		slog.String("action", e.Action),
		slog.String("subject", e.Subject),
		slog.String("outcome", e.Outcome),
		slog.Time("at", e.At),
	)

	return nil
}

var _ Sink = (*LogSink)(nil)
