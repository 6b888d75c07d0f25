package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/netx"
)

// HTTPUploader performs the raw PUT to a presigned URL.
type HTTPUploader interface {
	Put(ctx context.Context, url string, body []byte, contentType string, progress netx.ProgressFunc) (string, error)
}

// ProgressFunc receives an upload percentage in [0, 100].
type ProgressFunc func(percent int)

// Transporter moves the payload to the blob store in a single PUT.
type Transporter struct {
	uploader HTTPUploader
	now      func() time.Time
}

func NewTransporter(u HTTPUploader) *Transporter {
	return &Transporter{uploader: u, now: time.Now}
}

// Transfer PUTs file to cred.UploadURL. onProgress is called on the calling
// goroutine with non-decreasing values; 100 is only reported on success.
func (t *Transporter) Transfer(ctx context.Context, cred *models.UploadCredential, file models.File, onProgress ProgressFunc) models.TransferOutcome {
	if cred.Expired(t.now()) {
		return models.TransferOutcome{Err: &TransferError{Err: common.ErrorExpired}}
	}

	last := -1
	report := func(p int) {
		if onProgress == nil || p <= last {
			return
		}
		last = p
		onProgress(p)
	}

	report(0)
	etag, err := t.uploader.Put(ctx, cred.UploadURL, file.Data, file.ContentType, func(sent, total int64) {
		if total <= 0 {
			return
		}
		report(min(int(sent*100/total), 99))
	})
	if err != nil {
		te := &TransferError{Err: err}
		var se *netx.StatusError
		if errors.As(err, &se) {
			te.StatusCode = se.StatusCode
		}
		return models.TransferOutcome{Err: te}
	}

	report(100)
	return models.TransferOutcome{Success: true, IntegrityTag: etag}
}
