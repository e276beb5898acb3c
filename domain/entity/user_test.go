package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anmirazik/ev-server/shared/types"
)

func TestNewUser(t *testing.T) {
	tenantID := types.NewTenantID()

	user := NewUser(tenantID, "ada@example.com", "Lovelace", "Ada")

	assert.False(t, user.ID.IsZero())
	assert.Equal(t, tenantID, user.TenantID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, UserStatusPending, user.Status)
	assert.True(t, user.Issuer, "imported accounts are issuer-managed")
	assert.False(t, user.Deleted)
	assert.False(t, user.HasRole(), "the role is assigned in a separate step")
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUser_CanApplyImport(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{
			name:    "pending issuer account accepts import",
			mutate:  func(u *User) {},
			wantErr: nil,
		},
		{
			name:    "self-managed account rejects import",
			mutate:  func(u *User) { u.Issuer = false },
			wantErr: ErrUserNotIssuer,
		},
		{
			name:    "deleted account rejects import",
			mutate:  func(u *User) { u.Deleted = true },
			wantErr: ErrUserDeleted,
		},
		{
			name:    "active account rejects import",
			mutate:  func(u *User) { u.Status = UserStatusActive },
			wantErr: ErrUserNotPending,
		},
		{
			name:    "blocked account rejects import",
			mutate:  func(u *User) { u.Status = UserStatusBlocked },
			wantErr: ErrUserNotPending,
		},
		{
			name: "issuer check runs before the deleted check",
			mutate: func(u *User) {
				u.Issuer = false
				u.Deleted = true
			},
			wantErr: ErrUserNotIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := NewUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada")
			tt.mutate(user)

			err := user.CanApplyImport()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}

func TestUser_NotPendingMessage(t *testing.T) {
	user := NewUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada")
	user.Activate()

	err := user.CanApplyImport()

	require.Error(t, err)
	assert.Equal(t, "user is no longer pending", err.Error())
}

func TestUser_ApplyImport(t *testing.T) {
	user := NewUser(types.NewTenantID(), "ada@example.com", "Old", "Old")
	before := user.UpdatedAt

	time.Sleep(time.Millisecond)
	user.ApplyImport("Lovelace", "Ada")

	assert.Equal(t, "Lovelace", user.Name)
	assert.Equal(t, "Ada", user.FirstName)
	assert.True(t, user.UpdatedAt.After(before))
}

func TestUser_SetProvenance(t *testing.T) {
	user := NewUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada")
	importedOn := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	user.SetProvenance("csv-import", importedOn)

	assert.Equal(t, "csv-import", user.ImportedBy)
	assert.Equal(t, importedOn, user.ImportedOn)
}

func TestUser_ActivateAndAssignRole(t *testing.T) {
	user := NewUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada")

	assert.True(t, user.IsPending())
	assert.False(t, user.IsActive())

	user.AssignRole(UserRoleBasic)
	user.Activate()

	assert.True(t, user.HasRole())
	assert.Equal(t, UserRoleBasic, user.Role)
	assert.True(t, user.IsActive())
	assert.False(t, user.IsPending())
}

func TestUser_IsActiveRequiresNotDeleted(t *testing.T) {
	user := NewUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada")
	user.Activate()
	user.Deleted = true

	assert.False(t, user.IsActive())
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(u *User)
		wantErr error
	}{
		{"valid user", func(u *User) {}, nil},
		{"missing ID", func(u *User) { u.ID = types.UserID{} }, ErrInvalidUserID},
		{"missing tenant", func(u *User) { u.TenantID = types.TenantID{} }, ErrInvalidTenantID},
		{"missing email", func(u *User) { u.Email = "" }, ErrInvalidEmail},
		{"missing name", func(u *User) { u.Name = "" }, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := NewUser(types.NewTenantID(), "ada@example.com", "Lovelace", "Ada")
			tt.mutate(user)

			err := user.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}

func TestDomainError(t *testing.T) {
	err := NewDomainError("TEST_CODE", "test message")

	assert.Equal(t, "test message", err.Error())
	assert.Equal(t, "TEST_CODE", err.Code)
	assert.True(t, IsDomainError(err))
	assert.False(t, IsDomainError(assert.AnError))
}
