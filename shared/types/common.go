package types

import (
	"time"

	"github.com/google/uuid"
)

// TenantID represents a unique tenant identifier
type TenantID uuid.UUID

// UserID represents a unique user identifier
type UserID uuid.UUID

// ImportID represents a unique imported-user record identifier
type ImportID uuid.UUID

// CorrelationID represents a unique request correlation identifier
type CorrelationID uuid.UUID

// ServiceID represents a unique service identifier
type ServiceID string

// String returns the string representation of TenantID
func (t TenantID) String() string {
	return uuid.UUID(t).String()
}

// String returns the string representation of UserID
func (u UserID) String() string {
	return uuid.UUID(u).String()
}

// String returns the string representation of ImportID
func (i ImportID) String() string {
	return uuid.UUID(i).String()
}

// String returns the string representation of CorrelationID
func (c CorrelationID) String() string {
	return uuid.UUID(c).String()
}

// IsZero reports whether the TenantID is the zero value
func (t TenantID) IsZero() bool {
	return uuid.UUID(t) == uuid.Nil
}

// IsZero reports whether the UserID is the zero value
func (u UserID) IsZero() bool {
	return uuid.UUID(u) == uuid.Nil
}

// IsZero reports whether the ImportID is the zero value
func (i ImportID) IsZero() bool {
	return uuid.UUID(i) == uuid.Nil
}

// Status represents the status of various entities
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// BaseEntity represents common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	TenantID  TenantID  `json:"tenant_id" bson:"tenant_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// PaginationRequest represents pagination parameters
type PaginationRequest struct {
	Limit  int64 `json:"limit" validate:"min=1,max=1000"`
	Offset int64 `json:"offset" validate:"min=0"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Limit      int64 `json:"limit"`
	Offset     int64 `json:"offset"`
	TotalItems int64 `json:"total_items"`
	HasNext    bool  `json:"has_next"`
}

// NewTenantID generates a new tenant ID
func NewTenantID() TenantID {
	return TenantID(uuid.New())
}

// NewUserID generates a new user ID
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewImportID generates a new import record ID
func NewImportID() ImportID {
	return ImportID(uuid.New())
}

// NewCorrelationID generates a new correlation ID
func NewCorrelationID() CorrelationID {
	return CorrelationID(uuid.New())
}

// ParseTenantID parses a tenant ID from its string representation
func ParseTenantID(s string) (TenantID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(id), nil
}

// ParseUserID parses a user ID from its string representation
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(id), nil
}

// ParseImportID parses an import record ID from its string representation
func ParseImportID(s string) (ImportID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ImportID{}, err
	}
	return ImportID(id), nil
}
