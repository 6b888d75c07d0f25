package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepExpired(t *testing.T) {
	h := newHarness(t)

	stale := h.issue(t, owner, tenantImage(), 900)
	h.now = h.now.Add(10 * time.Minute)
	fresh := h.issue(t, owner, tenantImage(), 0)
	done := h.issue(t, owner, tenantImage(), 900)
	h.confirm(t, owner, done)

	h.now = h.now.Add(6 * time.Minute)

	n, err := h.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, models.UploadExpired, h.repos.uploads[stale.UploadToken].Status)
	assert.Equal(t, models.UploadPending, h.repos.uploads[fresh.UploadToken].Status)
	assert.Equal(t, models.UploadConfirmed, h.repos.uploads[done.UploadToken].Status)
	assert.Equal(t, []string{stale.S3Key}, h.store.deleted)

	_, err = h.svc.ConfirmUpload(context.Background(), owner, api.ConfirmUploadRequest{
		UploadToken: stale.UploadToken, S3Key: stale.S3Key,
	})
	assert.Error(t, err, "a swept credential cannot be confirmed")

	n, err = h.svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepExpired_ListError(t *testing.T) {
	h := newHarness(t)
	h.repos.listErr = errors.New("db down")

	_, err := h.svc.SweepExpired(context.Background())
	require.Error(t, err)
}

func TestRunSweeper_StopsWithContext(t *testing.T) {
	h := newHarness(t)
	cred := h.issue(t, owner, tenantImage(), 900)
	h.now = h.now.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.svc.RunSweeper(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool {
		u, err := h.repos.Uploads(nil).GetByToken(context.Background(), cred.UploadToken)
		return err == nil && u.Status == models.UploadExpired
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
