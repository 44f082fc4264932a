package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-tracker/internal/model"
)

// StatusRepository manages task statuses.
type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// GetByID returns gorm.ErrRecordNotFound when the status does not exist.
func (r *StatusRepository) GetByID(ctx context.Context, id uint) (*model.Status, error) {
	var status model.Status
	if err := r.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *StatusRepository) List(ctx context.Context) ([]model.Status, error) {
	statuses := []model.Status{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return statuses, nil
}

func (r *StatusRepository) Create(ctx context.Context, status *model.Status) error {
	if err := r.db.WithContext(ctx).Create(status).Error; err != nil {
		return fmt.Errorf("create status: %w", err)
	}
	return nil
}

// EnsureNames creates any of names that is not stored yet.
func (r *StatusRepository) EnsureNames(ctx context.Context, names []string) error {
	db := r.db.WithContext(ctx)
	for _, name := range names {
		var status model.Status
		err := db.Where("name = ?", name).First(&status).Error
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			status = model.Status{Name: name}
			if err := db.Create(&status).Error; err != nil {
				return fmt.Errorf("create status %q: %w", name, err)
			}
		default:
			return fmt.Errorf("find status %q: %w", name, err)
		}
	}
	return nil
}
