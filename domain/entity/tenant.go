package entity

import (
	"time"

	"github.com/Anmirazik/ev-server/shared/types"
)

// Tenant represents an organization whose users are imported independently
type Tenant struct {
	// Identity
	ID        types.TenantID `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	Subdomain string         `json:"subdomain" bson:"subdomain"`

	// State
	Active bool `json:"active" bson:"active"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewTenant creates a new active tenant
func NewTenant(name, subdomain string) *Tenant {
	now := time.Now().UTC()

	return &Tenant{
		ID:        types.NewTenantID(),
		Name:      name,
		Subdomain: subdomain,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Active
}

// Deactivate marks the tenant as inactive
func (t *Tenant) Deactivate() {
	t.Active = false
	t.UpdatedAt = time.Now().UTC()
}

// Validate validates the tenant
func (t *Tenant) Validate() error {
	if t.ID.IsZero() {
		return ErrInvalidTenantID
	}

	if t.Name == "" {
		return ErrInvalidTenantName
	}

	return nil
}

// Domain errors
var (
	ErrInvalidTenantName = NewDomainError("INVALID_TENANT_NAME", "tenant name is required")
)
