package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Anmirazik/ev-server/shared/types"
)

func TestLock_ExpiresAt(t *testing.T) {
	acquiredAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	lock := &Lock{
		TenantID:   types.NewTenantID(),
		Purpose:    LockPurposeUserImport,
		AcquiredAt: acquiredAt,
		TTL:        15 * time.Minute,
	}

	assert.Equal(t, acquiredAt.Add(15*time.Minute), lock.ExpiresAt())
}

func TestLock_IsExpired(t *testing.T) {
	fresh := &Lock{AcquiredAt: time.Now(), TTL: time.Hour}
	assert.False(t, fresh.IsExpired())

	stale := &Lock{AcquiredAt: time.Now().Add(-2 * time.Hour), TTL: time.Hour}
	assert.True(t, stale.IsExpired())
}
