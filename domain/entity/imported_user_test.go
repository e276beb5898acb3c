package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Anmirazik/ev-server/shared/types"
)

func TestNewImportedUser(t *testing.T) {
	tenantID := types.NewTenantID()

	record := NewImportedUser(tenantID, "ada@example.com", "Lovelace", "Ada", "csv-import")

	assert.False(t, record.ID.IsZero())
	assert.Equal(t, tenantID, record.TenantID)
	assert.Equal(t, ImportStatusReady, record.Status)
	assert.True(t, record.IsReady())
	assert.False(t, record.IsError())
	assert.Equal(t, "csv-import", record.ImportedBy)
	assert.False(t, record.ImportedOn.IsZero())
	assert.Empty(t, record.ErrorDescription)
}

func TestImportedUser_MarkError(t *testing.T) {
	record := NewImportedUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada", "csv-import")
	before := record.UpdatedAt

	time.Sleep(time.Millisecond)
	record.MarkError("user is no longer pending")

	assert.Equal(t, ImportStatusError, record.Status)
	assert.Equal(t, "user is no longer pending", record.ErrorDescription)
	assert.False(t, record.IsReady())
	assert.True(t, record.IsError())
	assert.True(t, record.UpdatedAt.After(before))
}

func TestImportedUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ImportedUser)
		wantErr error
	}{
		{"valid record", func(r *ImportedUser) {}, nil},
		{"missing ID", func(r *ImportedUser) { r.ID = types.ImportID{} }, ErrInvalidImportID},
		{"missing tenant", func(r *ImportedUser) { r.TenantID = types.TenantID{} }, ErrInvalidTenantID},
		{"missing email", func(r *ImportedUser) { r.Email = "" }, ErrInvalidEmail},
		{"missing imported on", func(r *ImportedUser) { r.ImportedOn = time.Time{} }, ErrInvalidImportedOn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewImportedUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada", "csv-import")
			tt.mutate(record)

			err := record.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}
