package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

// CreateUserInput represents data required to create a user.
// The password is stored as provided.
type CreateUserInput struct {
	Username string
	Password string
	Active   *bool
}

// UserService manages user accounts.
type UserService struct {
	repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	user := model.User{
		Username: input.Username,
		Password: input.Password,
		Active:   active,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
