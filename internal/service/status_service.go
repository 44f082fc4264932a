package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

// StatusService provides helpers around statuses.
type StatusService struct {
	repo *repository.StatusRepository
}

func NewStatusService(repo *repository.StatusRepository) *StatusService {
	return &StatusService{repo: repo}
}

func (s *StatusService) List(ctx context.Context) ([]model.Status, error) {
	return s.repo.List(ctx)
}

func (s *StatusService) Create(ctx context.Context, name string) (*model.Status, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	status := model.Status{Name: name}
	if err := s.repo.Create(ctx, &status); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStatusExists
		}
		return nil, err
	}
	return &status, nil
}

// EnsureDefaults seeds the given status names if they are missing.
func (s *StatusService) EnsureDefaults(ctx context.Context, names []string) error {
	return s.repo.EnsureNames(ctx, names)
}
