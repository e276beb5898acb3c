package entity

import (
	"time"

	"github.com/Anmirazik/ev-server/shared/types"
)

// ImportedUser represents a staged user record awaiting import into the
// canonical user store. Records are keyed by email within a tenant.
type ImportedUser struct {
	// Identity
	ID       types.ImportID `json:"id" bson:"_id"`
	TenantID types.TenantID `json:"tenant_id" bson:"tenant_id"`
	Email    string         `json:"email" bson:"email"`

	// Profile payload
	Name      string `json:"name" bson:"name"`
	FirstName string `json:"first_name" bson:"first_name"`

	// Processing state
	Status           ImportStatus `json:"status" bson:"status"`
	ErrorDescription string       `json:"error_description,omitempty" bson:"error_description,omitempty"`

	// Provenance
	ImportedBy string    `json:"imported_by" bson:"imported_by"`
	ImportedOn time.Time `json:"imported_on" bson:"imported_on"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ImportStatus represents the processing status of an imported record
type ImportStatus string

const (
	ImportStatusReady ImportStatus = "ready"
	ImportStatusError ImportStatus = "error"
)

// NewImportedUser creates a new staged user record ready for import
func NewImportedUser(tenantID types.TenantID, email, name, firstName, importedBy string) *ImportedUser {
	now := time.Now().UTC()

	return &ImportedUser{
		ID:         types.NewImportID(),
		TenantID:   tenantID,
		Email:      email,
		Name:       name,
		FirstName:  firstName,
		Status:     ImportStatusReady,
		ImportedBy: importedBy,
		ImportedOn: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkError marks the record as failed with a description of the failure.
// Records in error status are excluded from subsequent import passes.
func (r *ImportedUser) MarkError(description string) {
	r.Status = ImportStatusError
	r.ErrorDescription = description
	r.UpdatedAt = time.Now().UTC()
}

// IsReady returns true if the record is eligible for import
func (r *ImportedUser) IsReady() bool {
	return r.Status == ImportStatusReady
}

// IsError returns true if a previous import attempt failed
func (r *ImportedUser) IsError() bool {
	return r.Status == ImportStatusError
}

// Validate validates the imported record
func (r *ImportedUser) Validate() error {
	if r.ID.IsZero() {
		return ErrInvalidImportID
	}

	if r.TenantID.IsZero() {
		return ErrInvalidTenantID
	}

	if r.Email == "" {
		return ErrInvalidEmail
	}

	if r.ImportedOn.IsZero() {
		return ErrInvalidImportedOn
	}

	return nil
}

// Domain errors
var (
	ErrInvalidImportID   = NewDomainError("INVALID_IMPORT_ID", "import record ID is required")
	ErrInvalidImportedOn = NewDomainError("INVALID_IMPORTED_ON", "imported on timestamp is required")
)
