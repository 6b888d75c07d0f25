// Package uploads persists issued upload credentials until they are
// confirmed, cancelled or expire.
package uploads

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, u *models.PendingUpload) error
	// GetByToken returns the upload or common.ErrorNotFound.
	GetByToken(ctx context.Context, token string) (*models.PendingUpload, error)
	// Transition moves an upload from one status to another. It returns
	// common.ErrorConflict when the upload is no longer in status from.
	Transition(ctx context.Context, token string, from, to models.UploadStatus) error
	// ListExpired returns up to limit pending uploads whose credential
	// expired at or before now, oldest first.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*models.PendingUpload, error)
}
