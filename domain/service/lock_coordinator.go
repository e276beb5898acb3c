package service

import (
	"context"
	"time"

	"github.com/Anmirazik/ev-server/shared/types"
)

// LockPurposeUserImport is the lock purpose guarding the recurring user import
const LockPurposeUserImport = "users-import"

// LockCoordinator coordinates mutually exclusive work across service
// instances. A lock is scoped to a tenant and a purpose, held under a
// lease, and must always be released by its holder.
type LockCoordinator interface {
	// Acquire attempts to take the lock for the tenant and purpose.
	// It returns (nil, nil) when the lock is currently held elsewhere,
	// which callers treat as a normal skip, not a failure.
	Acquire(ctx context.Context, tenantID types.TenantID, purpose string) (*Lock, error)

	// Release releases a previously acquired lock. Releasing a lock
	// that has already expired or been released is not an error.
	Release(ctx context.Context, lock *Lock) error
}

// Lock represents an acquired lease on a tenant-scoped resource
type Lock struct {
	Key        string         `json:"key"`
	Token      string         `json:"token"`
	TenantID   types.TenantID `json:"tenant_id"`
	Purpose    string         `json:"purpose"`
	AcquiredAt time.Time      `json:"acquired_at"`
	TTL        time.Duration  `json:"ttl"`
}

// ExpiresAt returns the time at which the lease lapses on its own
func (l *Lock) ExpiresAt() time.Time {
	return l.AcquiredAt.Add(l.TTL)
}

// IsExpired returns true if the lease has lapsed without being released
func (l *Lock) IsExpired() bool {
	return time.Now().After(l.ExpiresAt())
}
