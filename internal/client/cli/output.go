package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// describeError turns pipeline errors into one line for the user.
func describeError(err error) string {
	var (
		verr *services.ValidationError
		nerr *services.NegotiationError
		terr *services.TransferError
		rerr *services.ReconciliationError
		aerr *services.AccessError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &aerr):
		return "you do not have access to this entity"
	case errors.As(err, &nerr):
		return "the server refused the upload: " + nerr.Reason
	case errors.As(err, &terr):
		if errors.Is(err, common.ErrorExpired) {
			return "the upload link expired, please try again"
		}
		return "the upload did not reach storage, please try again"
	case errors.As(err, &rerr):
		return "the file was sent but could not be recorded, please upload it again"
	case errors.Is(err, client.ErrUnauthorized):
		return "the access token was rejected"
	case errors.Is(err, client.ErrUnavailable):
		return "the server is unavailable"
	case errors.Is(err, common.ErrorNotFound):
		return "not found"
	default:
		return err.Error()
	}
}

func printRecord(w io.Writer, r *models.FileRecord) {
	doc := ""
	if r.DocumentType != "" {
		doc = " " + string(r.DocumentType)
	}
	fmt.Fprintf(w, "#%d %s%s %s (%s, %s) %s\n  %s\n",
		r.ID, r.FileCategory, doc, r.FileName, humanSize(r.FileSizeBytes), r.ContentType,
		r.UploadedAt.Local().Format(time.DateTime), r.PublicURL)
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// progressPrinter redraws a single progress line on w.
func progressPrinter(w io.Writer, name string) services.ProgressFunc {
	return func(p int) {
		fmt.Fprintf(w, "\rUploading %s: %3d%%", name, p)
		if p == 100 {
			fmt.Fprintln(w)
		}
	}
}
