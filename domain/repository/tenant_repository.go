package repository

import (
	"context"

	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/shared/types"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	GetByID(ctx context.Context, tenantID types.TenantID) (*entity.Tenant, error)

	// ListActive returns all tenants eligible for scheduled imports
	ListActive(ctx context.Context) ([]*entity.Tenant, error)
}
