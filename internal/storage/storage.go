// storage задаёт контракт внешнего хранилища учётных записей.
//
// Auth-сервис владеет токенами и лимитами, но не пользователями: из
// хранилища он читает учётные записи и обновляет только отметку
// последнего входа.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/boardroom-ai/auth-service/internal/models"
)

var (
	// ErrNotFound — учётная запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/id).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над учётными записями.
type UserStorage interface {
	// SaveUser создаёт новую учётную запись.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByUsername находит учётную запись по логину.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByID находит учётную запись по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateLastLogin проставляет отметку последнего успешного входа.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// UpdatePassword заменяет bcrypt-хэш пароля учётной записи.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, at time.Time) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	Close()
}
