package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGeneration(t *testing.T) {
	tenantID := NewTenantID()
	userID := NewUserID()
	importID := NewImportID()

	assert.False(t, tenantID.IsZero())
	assert.False(t, userID.IsZero())
	assert.False(t, importID.IsZero())

	assert.NotEqual(t, NewTenantID(), tenantID)
	assert.NotEqual(t, NewUserID(), userID)
	assert.NotEqual(t, NewImportID(), importID)
}

func TestIDStringRoundTrip(t *testing.T) {
	tenantID := NewTenantID()
	parsed, err := ParseTenantID(tenantID.String())
	require.NoError(t, err)
	assert.Equal(t, tenantID, parsed)

	userID := NewUserID()
	parsedUser, err := ParseUserID(userID.String())
	require.NoError(t, err)
	assert.Equal(t, userID, parsedUser)

	importID := NewImportID()
	parsedImport, err := ParseImportID(importID.String())
	require.NoError(t, err)
	assert.Equal(t, importID, parsedImport)
}

func TestParseRejectsMalformedIDs(t *testing.T) {
	_, err := ParseTenantID("not-a-uuid")
	assert.Error(t, err)

	_, err = ParseUserID("")
	assert.Error(t, err)

	_, err = ParseImportID("1234")
	assert.Error(t, err)
}

func TestZeroIDs(t *testing.T) {
	assert.True(t, TenantID{}.IsZero())
	assert.True(t, UserID{}.IsZero())
	assert.True(t, ImportID{}.IsZero())
}
