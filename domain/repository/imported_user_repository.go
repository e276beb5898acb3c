package repository

import (
	"context"

	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/shared/types"
)

// ImportedUserRepository defines the interface for the staged user store
type ImportedUserRepository interface {
	// Count returns the number of records with the given status for the tenant
	Count(ctx context.Context, tenantID types.TenantID, status entity.ImportStatus) (int64, error)

	// GetByStatus returns one page of records with the given status,
	// ordered by imported_on ascending
	GetByStatus(ctx context.Context, tenantID types.TenantID, status entity.ImportStatus, limit, offset int64) ([]*entity.ImportedUser, error)

	// Upsert inserts or replaces a record, keyed by email within the tenant
	Upsert(ctx context.Context, record *entity.ImportedUser) error

	// Delete removes a record from the staged store
	Delete(ctx context.Context, tenantID types.TenantID, importID types.ImportID) error
}
