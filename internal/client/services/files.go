package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// FileService reads and deletes file records of an entity.
type FileService interface {
	List(ctx context.Context, entityType common.EntityType, entityID int64, category common.FileCategory) (*models.EntityFileSet, error)
	Latest(ctx context.Context, entityType common.EntityType, entityID int64, category common.FileCategory) (*models.FileRecord, error)
	Delete(ctx context.Context, fileID int64) error
}

type fileService struct {
	client client.Client
}

func NewFileService(c client.Client) FileService {
	return &fileService{client: c}
}

// List returns the live files of an entity, optionally narrowed to category.
func (s *fileService) List(ctx context.Context, entityType common.EntityType, entityID int64, category common.FileCategory) (*models.EntityFileSet, error) {
	resp, err := s.client.ListFiles(ctx, string(entityType), entityID, string(category))
	if err != nil {
		return nil, queryError("list files", err)
	}

	set := &models.EntityFileSet{
		EntityType:     common.EntityType(resp.EntityType),
		EntityID:       resp.EntityID,
		Files:          make([]models.FileRecord, 0, len(resp.Files)),
		TotalSizeBytes: resp.TotalFileSize,
		TotalCount:     resp.TotalFileCount,
	}
	for _, f := range resp.Files {
		set.Files = append(set.Files, recordFromMetadata(f))
	}
	return set, nil
}

// Latest returns the newest file in the slot, or nil when there is none.
func (s *fileService) Latest(ctx context.Context, entityType common.EntityType, entityID int64, category common.FileCategory) (*models.FileRecord, error) {
	resp, err := s.client.LatestFile(ctx, string(entityType), entityID, string(category))
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, nil
		}
		return nil, queryError("latest file", err)
	}

	r := recordFromMetadata(*resp)
	return &r, nil
}

func (s *fileService) Delete(ctx context.Context, fileID int64) error {
	deleted, err := s.client.DeleteFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("file %d: %w", fileID, common.ErrorNotFound)
		}
		return queryError("delete file", err)
	}
	if !deleted {
		return fmt.Errorf("file %d: %w", fileID, common.ErrorNotFound)
	}
	return nil
}

func queryError(op string, err error) error {
	if errors.Is(err, client.ErrForbidden) {
		return &AccessError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func recordFromMetadata(f api.FileMetadata) models.FileRecord {
	return models.FileRecord{
		ID:            f.ID,
		EntityType:    common.EntityType(f.EntityType),
		EntityID:      f.EntityID,
		FileCategory:  common.FileCategory(f.FileCategory),
		DocumentType:  common.DocumentType(f.DocumentType),
		FileName:      f.FileName,
		FileSizeBytes: f.FileSize,
		ContentType:   f.ContentType,
		PublicURL:     f.CloudFrontURL,
		UploadedAt:    f.UploadedAt,
		UploadedBy:    f.UploadedBy,
	}
}
