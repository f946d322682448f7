package service

import (
	"context"
	"errors"

	"github.com/avelara/beacon/internal/repository"
)

// rolePermissions resolves a user's role through the user repo. A user
// that is not on file gets editor rights so a fresh single-user install
// works without account setup; delete stays admin-only, and registered
// users are bound by their role.
type rolePermissions struct {
	users repository.UserRepo
}

func NewRolePermissions(users repository.UserRepo) PermissionChecker {
	return &rolePermissions{users: users}
}

func (p *rolePermissions) CanEdit(ctx context.Context, userID string) bool {
	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return errors.Is(err, repository.ErrNotFound)
	}
	return u.Role.CanEdit()
}

func (p *rolePermissions) CanDelete(ctx context.Context, userID string) bool {
	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return u.Role.CanDelete()
}

// AllowAll grants every permission. Used when no user database is
// available.
type AllowAll struct{}

func (AllowAll) CanEdit(context.Context, string) bool   { return true }
func (AllowAll) CanDelete(context.Context, string) bool { return true }
