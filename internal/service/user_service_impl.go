package service

import (
	"context"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/repository"
	"github.com/google/uuid"
)

type userService struct {
	users repository.UserRepo
}

func NewUserService(users repository.UserRepo) UserService {
	return &userService{users: users}
}

func (s *userService) Upsert(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = domain.RoleEditor
	}
	return s.users.Upsert(ctx, u)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
