// Package services implements the metadata service side of the
// direct-to-storage upload protocol: credential issuance, confirmation,
// cancellation and the file queries.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/dbx"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
	"github.com/dmitrijs2005/rentkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentkeeper/internal/server/storage"
	"github.com/google/uuid"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID    string
	AccountID string
}

// FileService is safe for concurrent use.
type FileService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	store    storage.BlobStore
	ttl      time.Duration
	log      logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newToken func() string
}

func NewFileService(db *sql.DB, repos repomanager.RepositoryManager, store storage.BlobStore,
	ttl time.Duration, log logging.Logger, m *metrics.Metrics) *FileService {
	if log == nil {
		log = logging.Nop()
	}
	return &FileService{
		db:       db,
		repos:    repos,
		store:    store,
		ttl:      ttl,
		log:      log,
		metrics:  m,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// RequestUpload validates the intent against the category policy, claims
// the entity for the caller's account and issues a presigned PUT.
func (s *FileService) RequestUpload(ctx context.Context, id Identity, req api.RequestUploadRequest) (*api.RequestUploadResponse, error) {
	entity, category, docType, err := parseSlot(req.EntityType, req.EntityID, req.FileCategory, req.DocumentType)
	if err != nil {
		s.metrics.Upload(metrics.OutcomeRejected)
		return nil, err
	}
	policy, _ := common.PolicyFor(category)
	if err := checkIntent(policy, req); err != nil {
		s.metrics.Upload(metrics.OutcomeRejected)
		return nil, err
	}

	owner, err := s.repos.Owners(s.db).Claim(ctx, string(entity), req.EntityID, id.AccountID)
	if err != nil {
		return nil, fmt.Errorf("claim entity: %w", err)
	}
	if owner != id.AccountID {
		s.metrics.Upload(metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %s %d belongs to another account", common.ErrorForbidden, entity, req.EntityID)
	}

	token := s.newToken()
	key := storageKey(entity, req.EntityID, category, token, req.FileName)

	url, err := s.store.PresignPut(ctx, key, req.ContentType, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	u := &models.PendingUpload{
		UploadToken:  token,
		AccountID:    id.AccountID,
		UserID:       id.UserID,
		EntityType:   string(entity),
		EntityID:     req.EntityID,
		FileCategory: string(category),
		DocumentType: string(docType),
		FileName:     req.FileName,
		FileSize:     req.FileSize,
		ContentType:  common.NormalizeContentType(req.ContentType),
		StorageKey:   key,
		MaxFileSize:  policy.MaxSizeBytes,
		Status:       models.UploadPending,
		ExpiresAt:    s.now().Add(s.ttl).UTC(),
	}
	if err := s.repos.Uploads(s.db).Create(ctx, u); err != nil {
		return nil, fmt.Errorf("store pending upload: %w", err)
	}

	s.metrics.Upload(metrics.OutcomeRequested)
	s.log.Info(ctx, "upload credential issued",
		"upload_token", token, "entity_type", entity, "entity_id", req.EntityID, "category", category)

	return &api.RequestUploadResponse{
		UploadURL:           url,
		UploadToken:         token,
		S3Key:               key,
		ExpiresAt:           u.ExpiresAt,
		MaxFileSizeBytes:    policy.MaxSizeBytes,
		AllowedContentTypes: policy.AllowedContentTypes,
	}, nil
}

// ConfirmUpload turns a pending upload whose object arrived intact into a
// file record. The status change, the insert and the removal of records it
// replaces in the same slot share one transaction, so a credential yields at
// most one record.
func (s *FileService) ConfirmUpload(ctx context.Context, id Identity, req api.ConfirmUploadRequest) (*api.ConfirmUploadResponse, error) {
	u, err := s.ownedUpload(ctx, id, req.UploadToken)
	if err != nil {
		return nil, err
	}
	if u.Status != models.UploadPending {
		return nil, fmt.Errorf("%w: upload is %s", common.ErrorConflict, u.Status)
	}
	if u.Expired(s.now()) {
		return nil, common.ErrorExpired
	}
	if req.S3Key != u.StorageKey {
		return nil, fmt.Errorf("%w: storage key does not match the upload token", common.ErrorIncorrectMetadata)
	}

	info, err := s.store.Stat(ctx, u.StorageKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: object was not uploaded", common.ErrorIncorrectMetadata)
	}
	if err != nil {
		return nil, fmt.Errorf("stat object: %w", err)
	}
	if info.Size <= 0 || info.Size > u.MaxFileSize {
		return nil, fmt.Errorf("%w: stored object size %d is outside the limit of %d bytes",
			common.ErrorIncorrectMetadata, info.Size, u.MaxFileSize)
	}
	if tag := strings.Trim(req.ETag, `"`); tag != "" && info.ETag != "" && tag != info.ETag {
		return nil, fmt.Errorf("%w: integrity tag mismatch", common.ErrorIncorrectMetadata)
	}

	f := &models.File{
		UploadToken:  u.UploadToken,
		AccountID:    u.AccountID,
		EntityType:   u.EntityType,
		EntityID:     u.EntityID,
		FileCategory: u.FileCategory,
		DocumentType: u.DocumentType,
		FileName:     u.FileName,
		FileSize:     info.Size,
		ContentType:  u.ContentType,
		StorageKey:   u.StorageKey,
		PublicURL:    s.store.PublicURL(u.StorageKey),
		UploadedBy:   id.UserID,
	}

	var superseded []string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Uploads(tx).Transition(ctx, u.UploadToken, models.UploadPending, models.UploadConfirmed); err != nil {
			return err
		}
		repo := s.repos.Files(tx)
		if err := repo.Create(ctx, f); err != nil {
			return err
		}
		// Images keep only the latest record; documents one per document type.
		keys, err := repo.Supersede(ctx, f)
		superseded = keys
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: upload was finalized concurrently", common.ErrorConflict)
		}
		return nil, fmt.Errorf("confirm upload: %w", err)
	}

	for _, key := range superseded {
		s.removeBlob(ctx, key)
	}

	s.metrics.Upload(metrics.OutcomeConfirmed)
	s.log.Info(ctx, "upload confirmed", "upload_token", u.UploadToken, "file_id", f.ID, "size", f.FileSize,
		"superseded", len(superseded))

	return &api.ConfirmUploadResponse{
		FileID:        f.ID,
		CloudFrontURL: f.PublicURL,
		FileName:      f.FileName,
		FileSize:      f.FileSize,
		UploadedAt:    f.UploadedAt,
		UploadedBy:    f.UploadedBy,
		Message:       "File uploaded successfully",
	}, nil
}

// CancelUpload retires a pending credential and removes whatever was
// written under its key. Cancelling twice or after expiry is harmless;
// cancelling a confirmed upload is a conflict.
func (s *FileService) CancelUpload(ctx context.Context, id Identity, req api.CancelUploadRequest) (*api.CancelUploadResponse, error) {
	u, err := s.ownedUpload(ctx, id, req.UploadToken)
	if err != nil {
		return nil, err
	}

	switch u.Status {
	case models.UploadConfirmed:
		return nil, fmt.Errorf("%w: upload is already confirmed", common.ErrorConflict)
	case models.UploadCancelled, models.UploadExpired:
		return &api.CancelUploadResponse{Cancelled: false, Message: "upload is already " + string(u.Status)}, nil
	}

	err = s.repos.Uploads(s.db).Transition(ctx, u.UploadToken, models.UploadPending, models.UploadCancelled)
	if errors.Is(err, common.ErrorConflict) {
		return &api.CancelUploadResponse{Cancelled: false, Message: "upload was finalized concurrently"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cancel upload: %w", err)
	}

	s.removeBlob(ctx, u.StorageKey)
	s.metrics.Upload(metrics.OutcomeCancelled)
	s.log.Info(ctx, "upload cancelled", "upload_token", u.UploadToken, "reason", req.Reason)

	return &api.CancelUploadResponse{Cancelled: true, Message: "Upload cancelled"}, nil
}

// ListFiles returns the entity's files, optionally limited to one category.
// An entity nobody has uploaded to yet has no files.
func (s *FileService) ListFiles(ctx context.Context, id Identity, entityType string, entityID int64, category string) (*api.EntityFilesResponse, error) {
	entity, err := common.ParseEntityType(entityType)
	if err != nil {
		return nil, err
	}
	if category != "" {
		c, err := common.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		category = string(c)
	}

	resp := &api.EntityFilesResponse{EntityType: string(entity), EntityID: entityID, Files: []api.FileMetadata{}}

	if err := s.checkOwner(ctx, id, entity, entityID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return resp, nil
		}
		return nil, err
	}

	files, err := s.repos.Files(s.db).ListByEntity(ctx, string(entity), entityID, category)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	for _, f := range files {
		resp.Files = append(resp.Files, metadataFromFile(f))
		resp.TotalFileSize += f.FileSize
	}
	resp.TotalFileCount = len(resp.Files)
	return resp, nil
}

// LatestFile returns the newest file in a slot or common.ErrorNotFound.
func (s *FileService) LatestFile(ctx context.Context, id Identity, entityType string, entityID int64, category string) (*api.FileMetadata, error) {
	entity, err := common.ParseEntityType(entityType)
	if err != nil {
		return nil, err
	}
	c, err := common.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, id, entity, entityID); err != nil {
		return nil, err
	}

	f, err := s.repos.Files(s.db).Latest(ctx, string(entity), entityID, string(c))
	if err != nil {
		return nil, err
	}
	md := metadataFromFile(f)
	return &md, nil
}

// DeleteFile removes the record, then its blob on a best-effort basis.
func (s *FileService) DeleteFile(ctx context.Context, id Identity, fileID int64) error {
	files := s.repos.Files(s.db)

	f, err := files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if f.AccountID != id.AccountID {
		return common.ErrorForbidden
	}
	if err := files.Delete(ctx, fileID); err != nil {
		return err
	}

	s.removeBlob(ctx, f.StorageKey)
	s.log.Info(ctx, "file deleted", "file_id", fileID)
	return nil
}

func (s *FileService) ownedUpload(ctx context.Context, id Identity, token string) (*models.PendingUpload, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, fmt.Errorf("%w: unknown upload token", common.ErrorNotFound)
	}
	u, err := s.repos.Uploads(s.db).GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if u.AccountID != id.AccountID {
		return nil, common.ErrorForbidden
	}
	return u, nil
}

func (s *FileService) checkOwner(ctx context.Context, id Identity, entity common.EntityType, entityID int64) error {
	owner, err := s.repos.Owners(s.db).Owner(ctx, string(entity), entityID)
	if err != nil {
		return err
	}
	if owner != id.AccountID {
		return common.ErrorForbidden
	}
	return nil
}

// removeBlob never fails the caller: an undeleted object is only an orphan.
func (s *FileService) removeBlob(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn(ctx, "blob cleanup failed", "key", key, "error", err)
	}
}

func parseSlot(entityType string, entityID int64, category, documentType string) (common.EntityType, common.FileCategory, common.DocumentType, error) {
	entity, err := common.ParseEntityType(entityType)
	if err != nil {
		return "", "", "", err
	}
	if entityID <= 0 {
		return "", "", "", fmt.Errorf("%w: entity id must be positive", common.ErrorIncorrectMetadata)
	}
	c, err := common.ParseCategory(category)
	if err != nil {
		return "", "", "", err
	}
	d, err := common.ParseDocumentType(documentType)
	if err != nil {
		return "", "", "", err
	}
	if err := common.CheckSlot(entity, c, d); err != nil {
		return "", "", "", err
	}
	return entity, c, d, nil
}

func checkIntent(policy common.CategoryPolicy, req api.RequestUploadRequest) error {
	switch {
	case strings.TrimSpace(req.FileName) == "":
		return fmt.Errorf("%w: file name is required", common.ErrorIncorrectMetadata)
	case req.FileSize <= 0:
		return fmt.Errorf("%w: file size must be positive", common.ErrorIncorrectMetadata)
	case req.FileSize > policy.MaxSizeBytes:
		return fmt.Errorf("%w: file size %d exceeds the %s limit of %d bytes",
			common.ErrorIncorrectMetadata, req.FileSize, policy.Kind, policy.MaxSizeBytes)
	case !policy.AllowsContentType(req.ContentType):
		return fmt.Errorf("%w: content type %q is not allowed for %s",
			common.ErrorIncorrectMetadata, req.ContentType, policy.Category)
	case !policy.AllowsExtension(req.FileName):
		return fmt.Errorf("%w: extension of %q is not allowed for %s",
			common.ErrorIncorrectMetadata, req.FileName, policy.Category)
	}
	return nil
}

// storageKey lays objects out as <entity>/<id>/<category>/<token>-<name>.
func storageKey(entity common.EntityType, entityID int64, category common.FileCategory, token, fileName string) string {
	return fmt.Sprintf("%s/%d/%s/%s-%s", entity, entityID, category, token, sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

func metadataFromFile(f *models.File) api.FileMetadata {
	return api.FileMetadata{
		ID:            f.ID,
		EntityType:    f.EntityType,
		EntityID:      f.EntityID,
		FileCategory:  f.FileCategory,
		DocumentType:  f.DocumentType,
		FileName:      f.FileName,
		FileSize:      f.FileSize,
		ContentType:   f.ContentType,
		CloudFrontURL: f.PublicURL,
		UploadedAt:    f.UploadedAt,
		UploadedBy:    f.UploadedBy,
	}
}
