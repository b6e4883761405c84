package repository

import (
	"context"

	"parcel-notifier/internal/models"

	"github.com/jackc/pgx/v5"
)

// ProfileRepository - хранилище профилей студентов.
type ProfileRepository interface {
	// GetProfileByID возвращает ровно одну строку профиля с указанным id.
	// Если строк 0 или больше одной, возвращается ошибка.
	// Профиль без токена возвращается с FCMToken == nil.
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
}

// ProfileRepositoryFactory создает клиента хранилища на каждый запрос.
type ProfileRepositoryFactory interface {
	NewProfileRepository() (ProfileRepository, error)
}

// Querier - часть *pgxpool.Pool, *pgx.Conn и pgx.Tx, нужная репозиторию профилей.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type staticFactory struct {
	repo ProfileRepository
}

// NewStaticFactory отдает один и тот же репозиторий на каждый запрос.
// Подходит для реализаций, безопасных для конкурентного использования (пул pgx).
func NewStaticFactory(repo ProfileRepository) ProfileRepositoryFactory {
	return &staticFactory{repo: repo}
}

func (f *staticFactory) NewProfileRepository() (ProfileRepository, error) {
	return f.repo, nil
}
