package repository

import (
	"context"

	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/shared/types"
)

// UserRepository defines the interface for canonical user persistence
type UserRepository interface {
	// Lookup operations
	//
	// FindByEmail returns (nil, nil) when no user with the given email
	// exists for the tenant.
	FindByEmail(ctx context.Context, tenantID types.TenantID, email string) (*entity.User, error)

	// Write operations
	Create(ctx context.Context, user *entity.User) (types.UserID, error)
	Update(ctx context.Context, user *entity.User) error

	// Sub-attribute operations, persisted independently of Update
	SaveRole(ctx context.Context, tenantID types.TenantID, userID types.UserID, role entity.UserRole) error
	SaveStatus(ctx context.Context, tenantID types.TenantID, userID types.UserID, status entity.UserStatus) error
}
