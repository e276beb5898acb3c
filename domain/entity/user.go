package entity

import (
	"time"

	"github.com/Anmirazik/ev-server/shared/types"
)

// User represents a canonical user account in the system
type User struct {
	// Identity
	ID       types.UserID   `json:"id" bson:"_id"`
	TenantID types.TenantID `json:"tenant_id" bson:"tenant_id"`
	Email    string         `json:"email" bson:"email"`

	// Profile
	Name      string `json:"name" bson:"name"`
	FirstName string `json:"first_name" bson:"first_name"`

	// Account state
	Status  UserStatus `json:"status" bson:"status"`
	Role    UserRole   `json:"role,omitempty" bson:"role,omitempty"`
	Issuer  bool       `json:"issuer" bson:"issuer"`
	Deleted bool       `json:"deleted" bson:"deleted"`

	// Import provenance
	ImportedBy string    `json:"imported_by,omitempty" bson:"imported_by,omitempty"`
	ImportedOn time.Time `json:"imported_on,omitempty" bson:"imported_on,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// UserStatus represents the lifecycle status of a user account
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBlocked  UserStatus = "blocked"
)

// UserRole represents the access role assigned to a user
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleBasic UserRole = "basic"
	UserRoleDemo  UserRole = "demo"
)

// NewUser creates a new issuer-managed user from an imported record
func NewUser(tenantID types.TenantID, email, name, firstName string) *User {
	now := time.Now().UTC()

	return &User{
		ID:        types.NewUserID(),
		TenantID:  tenantID,
		Email:     email,
		Name:      name,
		FirstName: firstName,
		Status:    UserStatusPending,
		Issuer:    true,
		Deleted:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanApplyImport reports whether an imported record may be merged into
// this user. Only issuer-managed, non-deleted, pending accounts accept
// imported data.
func (u *User) CanApplyImport() error {
	if !u.Issuer {
		return ErrUserNotIssuer
	}

	if u.Deleted {
		return ErrUserDeleted
	}

	if u.Status != UserStatusPending {
		return ErrUserNotPending
	}

	return nil
}

// ApplyImport merges the profile fields of an imported record into the user
func (u *User) ApplyImport(name, firstName string) {
	u.Name = name
	u.FirstName = firstName
	u.UpdatedAt = time.Now().UTC()
}

// SetProvenance records where and when the user data was imported from
func (u *User) SetProvenance(importedBy string, importedOn time.Time) {
	u.ImportedBy = importedBy
	u.ImportedOn = importedOn
	u.UpdatedAt = time.Now().UTC()
}

// Activate marks the user account as active
func (u *User) Activate() {
	u.Status = UserStatusActive
	u.UpdatedAt = time.Now().UTC()
}

// AssignRole assigns an access role to the user
func (u *User) AssignRole(role UserRole) {
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
}

// HasRole returns true if the user has a role assigned
func (u *User) HasRole() bool {
	return u.Role != ""
}

// IsActive returns true if the user account is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && !u.Deleted
}

// IsPending returns true if the user account is awaiting activation
func (u *User) IsPending() bool {
	return u.Status == UserStatusPending
}

// Validate validates the user
func (u *User) Validate() error {
	if u.ID.IsZero() {
		return ErrInvalidUserID
	}

	if u.TenantID.IsZero() {
		return ErrInvalidTenantID
	}

	if u.Email == "" {
		return ErrInvalidEmail
	}

	if u.Name == "" {
		return ErrInvalidName
	}

	return nil
}

// Domain errors
var (
	ErrInvalidUserID   = NewDomainError("INVALID_USER_ID", "user ID is required")
	ErrInvalidTenantID = NewDomainError("INVALID_TENANT_ID", "tenant ID is required")
	ErrInvalidEmail    = NewDomainError("INVALID_EMAIL", "a valid email address is required")
	ErrInvalidName     = NewDomainError("INVALID_NAME", "user name is required")
	ErrUserNotIssuer   = NewDomainError("USER_NOT_ISSUER", "user is not an issuer-managed account")
	ErrUserDeleted     = NewDomainError("USER_DELETED", "user account has been deleted")
	ErrUserNotPending  = NewDomainError("USER_NOT_PENDING", "user is no longer pending")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// IsDomainError returns true if the error is a domain error
func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}
