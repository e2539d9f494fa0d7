package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись (principal) в системе.
//
// Хранилище пользователей для auth-сервиса внешнее: сервис читает
// учётные записи и обновляет только отметку последнего входа.
type User struct {
	// ID — стабильный непрозрачный идентификатор пользователя.
	ID uuid.UUID
	// Username — логин для входа.
	Username string
	// PasswordHash — bcrypt-хэш пароля.
	PasswordHash string
	// Active — признак активности; неактивный пользователь не может
	// логиниться и проходить верификацию токена.
	Active bool
	// CreatedAt/UpdatedAt — служебные отметки времени (UTC).
	CreatedAt time.Time
	UpdatedAt time.Time
	// LastLoginAt — момент последнего успешного входа (UTC), nil если входов не было.
	LastLoginAt *time.Time
}
