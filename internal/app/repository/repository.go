package repository

import (
	"errors"
	"fmt"

	"backend/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Ошибки уровня хранилища, различимые для вызывающего кода
var (
	// ErrRequestNotFound — заявка с таким ID не существует
	ErrRequestNotFound = errors.New("заявка не найдена")
)

type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Автоматическая миграция всех таблиц
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// NewWithDB оборачивает уже открытое подключение (используется в тестах)
func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate выполняет миграцию всех моделей предметной области
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ds.WorkRequest{},
		&ds.RequestLot{},
		&ds.RequestSamplingLot{},
		&ds.RequestStatusHistory{},
		&ds.RequestAttachment{},
	)
}
