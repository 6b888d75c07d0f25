package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttempt_HappyPath(t *testing.T) {
	a := NewAttempt()
	for _, s := range []State{StateValidated, StateNegotiated, StateTransferring, StateConfirmed, StateSucceeded} {
		require.NoError(t, a.Advance(s))
	}
	assert.True(t, a.State.Terminal())
	assert.Equal(t, []State{StateIdle, StateValidated, StateNegotiated, StateTransferring, StateConfirmed, StateSucceeded}, a.History)
}

func TestAttempt_FailureGoesThroughCancelRequested(t *testing.T) {
	a := NewAttempt()
	require.NoError(t, a.Advance(StateValidated))
	require.NoError(t, a.Advance(StateNegotiated))
	require.NoError(t, a.Advance(StateTransferring))
	require.NoError(t, a.Advance(StateCancelRequested))
	require.NoError(t, a.Advance(StateFailed))
	assert.True(t, a.State.Terminal())
}

func TestAttempt_ConfirmFailureSkipsCancel(t *testing.T) {
	a := NewAttempt()
	for _, s := range []State{StateValidated, StateNegotiated, StateTransferring, StateConfirmed} {
		require.NoError(t, a.Advance(s))
	}
	assert.Error(t, a.Advance(StateCancelRequested))
	require.NoError(t, a.Advance(StateFailed))
}

func TestAttempt_IllegalTransitions(t *testing.T) {
	a := NewAttempt()
	assert.Error(t, a.Advance(StateTransferring), "cannot skip negotiation")

	require.NoError(t, a.Advance(StateValidated))
	assert.Error(t, a.Advance(StateCancelRequested), "nothing to cancel before negotiation")

	require.NoError(t, a.Advance(StateFailed))
	assert.Error(t, a.Advance(StateIdle), "terminal states are final")
	assert.Equal(t, StateFailed, a.State)
}

func TestUploadCredential_Expired(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	c := &UploadCredential{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(time.Minute)))

	assert.False(t, (&UploadCredential{}).Expired(now))
}

func TestUploadCredential_Admits(t *testing.T) {
	c := &UploadCredential{MaxFileSizeBytes: 10, AllowedContentTypes: []string{"image/png"}}
	assert.True(t, c.Admits(10, "image/png"))
	assert.True(t, c.Admits(1, "IMAGE/PNG"))
	assert.False(t, c.Admits(11, "image/png"))
	assert.False(t, c.Admits(1, "image/gif"))

	assert.True(t, (&UploadCredential{}).Admits(1<<30, "anything/else"))
}

func TestFile_Size(t *testing.T) {
	assert.Equal(t, int64(3), File{Data: []byte("abc")}.Size())
}
