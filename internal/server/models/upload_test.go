package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingUpload_Expired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&PendingUpload{ExpiresAt: now.Add(time.Second)}).Expired(now))
	assert.True(t, (&PendingUpload{ExpiresAt: now}).Expired(now), "expiry instant is already expired")
	assert.True(t, (&PendingUpload{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
}
