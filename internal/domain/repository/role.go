package repository

import (
	"context"

	"github.com/mellowshop/orderdesk/internal/domain/model"
)

// RoleRepository describes access to the admin roles table.
type RoleRepository interface {
	GetByLogin(ctx context.Context, login string) (*model.AdminUser, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}
