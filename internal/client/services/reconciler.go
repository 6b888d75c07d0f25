package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
)

const defaultCancelTimeout = 10 * time.Second

// Reconciler finalizes or abandons a credential with the metadata service.
type Reconciler struct {
	client        client.Client
	log           logging.Logger
	cancelTimeout time.Duration
}

func NewReconciler(c client.Client, log logging.Logger) *Reconciler {
	if log == nil {
		log = logging.Nop()
	}
	return &Reconciler{client: c, log: log, cancelTimeout: defaultCancelTimeout}
}

// Confirm turns a successful transfer into a file record. It is the only
// way a record comes into existence.
func (r *Reconciler) Confirm(ctx context.Context, cred *models.UploadCredential, outcome models.TransferOutcome) (*models.FileRecord, error) {
	if !outcome.Success {
		return nil, &ReconciliationError{
			UploadToken: cred.UploadToken,
			StorageKey:  cred.StorageKey,
			Err:         errors.New("transfer did not succeed"),
		}
	}

	resp, err := r.client.ConfirmUpload(ctx, &api.ConfirmUploadRequest{
		UploadToken: cred.UploadToken,
		S3Key:       cred.StorageKey,
		ETag:        outcome.IntegrityTag,
	})
	if err != nil {
		if errors.Is(err, client.ErrForbidden) {
			return nil, &AccessError{Op: "confirm upload", Err: err}
		}
		return nil, &ReconciliationError{UploadToken: cred.UploadToken, StorageKey: cred.StorageKey, Err: err}
	}
	if resp.FileID <= 0 {
		return nil, &ReconciliationError{
			UploadToken: cred.UploadToken,
			StorageKey:  cred.StorageKey,
			Err:         errors.New("confirm response carries no file id"),
		}
	}

	return &models.FileRecord{
		ID:            resp.FileID,
		FileName:      resp.FileName,
		FileSizeBytes: resp.FileSize,
		PublicURL:     resp.CloudFrontURL,
		UploadedAt:    resp.UploadedAt,
		UploadedBy:    resp.UploadedBy,
	}, nil
}

// Cancel releases cred. It runs on a context detached from ctx so that a
// cancelled caller still gets its credential released. The returned
// *CleanupError has already been logged.
func (r *Reconciler) Cancel(ctx context.Context, cred *models.UploadCredential, reason string) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cancelTimeout)
	defer cancel()

	_, err := r.client.CancelUpload(cctx, &api.CancelUploadRequest{UploadToken: cred.UploadToken, Reason: reason})
	if err != nil {
		r.log.Warn(ctx, "cancel upload failed", "upload_token", cred.UploadToken, "reason", reason, "error", err)
		return &CleanupError{Op: "cancel upload", Target: cred.UploadToken, Err: err}
	}

	r.log.Debug(ctx, "upload cancelled", "upload_token", cred.UploadToken, "reason", reason)
	return nil
}
