package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/psds-microservice/ticket-desk/internal/errs"
	"github.com/psds-microservice/ticket-desk/internal/model"
	"gorm.io/gorm"
)

// PostgresStore пишет заявки в таблицу tickets через gorm.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, t *model.Ticket) (string, error) {
	t.ID = uuid.NewString()
	// gorm autoCreateTime заполняет только нулевое значение
	t.CreatedAt = time.Time{}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		t.ID = ""
		return "", fmt.Errorf("%w: insert ticket: %v", errs.ErrStore, err)
	}
	return t.ID, nil
}
