package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
)

// ReplaceService swaps a file for a new one without ever leaving the slot
// empty: the old file is only deleted after the new one is confirmed.
type ReplaceService interface {
	Replace(ctx context.Context, req UploadRequest, oldFileID int64) (*models.FileRecord, error)
}

type replaceService struct {
	uploads UploadService
	client  client.Client
	log     logging.Logger
}

func NewReplaceService(uploads UploadService, c client.Client, log logging.Logger) ReplaceService {
	if log == nil {
		log = logging.Nop()
	}
	return &replaceService{uploads: uploads, client: c, log: log}
}

// Replace uploads req and then deletes oldFileID. When the upload fails the
// old file is untouched. A failed delete is logged and the new record is
// still returned.
func (s *replaceService) Replace(ctx context.Context, req UploadRequest, oldFileID int64) (*models.FileRecord, error) {
	record, err := s.uploads.Upload(ctx, req)
	if err != nil {
		return nil, err
	}

	if oldFileID <= 0 || oldFileID == record.ID {
		return record, nil
	}

	if err := s.retire(ctx, oldFileID); err != nil {
		s.log.Warn(ctx, "old file left in place after replace",
			"old_file_id", oldFileID, "new_file_id", record.ID, "error", err)
	}
	return record, nil
}

func (s *replaceService) retire(ctx context.Context, fileID int64) error {
	target := strconv.FormatInt(fileID, 10)

	deleted, err := s.client.DeleteFile(context.WithoutCancel(ctx), fileID)
	if err != nil {
		return &CleanupError{Op: "delete file", Target: target, Err: err}
	}
	if !deleted {
		return &CleanupError{Op: "delete file", Target: target, Err: errors.New("service reported nothing deleted")}
	}
	return nil
}
