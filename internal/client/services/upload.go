package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/client/repositories/attempts"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
)

// UploadRequest is one file to attach to one entity slot.
type UploadRequest struct {
	EntityType   common.EntityType
	EntityID     int64
	Category     common.FileCategory
	DocumentType common.DocumentType
	File         models.File
	OnProgress   ProgressFunc
}

// UploadService runs the direct-to-storage upload pipeline.
//
// Contract:
//   - Upload: validate, compress images, negotiate, transfer, confirm.
//     Any failure after negotiation releases the credential before returning.
//   - SweepAbandoned: release credentials a previous run left behind.
type UploadService interface {
	Upload(ctx context.Context, req UploadRequest) (*models.FileRecord, error)
	SweepAbandoned(ctx context.Context) (int, error)
}

type uploadService struct {
	negotiator  *Negotiator
	transporter *Transporter
	reconciler  *Reconciler
	compressor  *Compressor
	journal     attempts.Repository
	log         logging.Logger
	now         func() time.Time

	compress      bool
	maxImageWidth int
	imageQuality  int
}

// UploadOption configures the upload service.
type UploadOption func(*uploadService)

// WithCodec enables client-side image compression with codec.
func WithCodec(codec ImageCodec) UploadOption {
	return func(s *uploadService) { s.compressor = NewCompressor(codec, s.log) }
}

// WithImageLimits sets the target width and encoder quality for images.
func WithImageLimits(maxWidth, quality int) UploadOption {
	return func(s *uploadService) {
		s.maxImageWidth = maxWidth
		s.imageQuality = quality
	}
}

// WithoutCompression sends images as selected.
func WithoutCompression() UploadOption {
	return func(s *uploadService) { s.compress = false }
}

// WithJournal records negotiated credentials until they reach a terminal state.
func WithJournal(r attempts.Repository) UploadOption {
	return func(s *uploadService) { s.journal = r }
}

func WithLogger(l logging.Logger) UploadOption {
	return func(s *uploadService) { s.log = l }
}

// WithClock overrides time.Now for credential expiry checks.
func WithClock(now func() time.Time) UploadOption {
	return func(s *uploadService) { s.now = now }
}

func NewUploadService(c client.Client, uploader HTTPUploader, opts ...UploadOption) UploadService {
	s := &uploadService{
		log:           logging.Nop(),
		now:           time.Now,
		compress:      true,
		maxImageWidth: common.DefaultMaxImageWidth,
		imageQuality:  common.DefaultImageQuality,
	}
	for _, o := range opts {
		o(s)
	}

	s.negotiator = NewNegotiator(c)
	s.transporter = NewTransporter(uploader)
	s.transporter.now = s.now
	s.reconciler = NewReconciler(c, s.log)
	if s.compressor != nil {
		s.compressor.log = s.log
	}
	return s
}

func (s *uploadService) Upload(ctx context.Context, req UploadRequest) (*models.FileRecord, error) {
	if err := common.CheckSlot(req.EntityType, req.Category, req.DocumentType); err != nil {
		return nil, err
	}

	log := s.log.With("entity_type", req.EntityType, "entity_id", req.EntityID, "category", req.Category, "file", req.File.Name)
	a := models.NewAttempt()
	step := func(next models.State) {
		if err := a.Advance(next); err != nil {
			panic(err)
		}
		log.Debug(ctx, "upload state", "state", next)
	}

	if err := Validate(req.File, req.Category); err != nil {
		step(models.StateFailed)
		return nil, err
	}
	step(models.StateValidated)

	file := req.File
	if s.compress && s.compressor != nil && req.Category.IsImage() {
		file = s.compressor.Compress(file, s.maxImageWidth, s.imageQuality)
	}

	intent := models.UploadIntent{
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		FileCategory:  req.Category,
		DocumentType:  req.DocumentType,
		FileName:      file.Name,
		FileSizeBytes: file.Size(),
		ContentType:   file.ContentType,
	}

	cred, err := s.negotiator.RequestUploadURL(ctx, intent)
	if err != nil {
		step(models.StateFailed)
		return nil, err
	}
	a.Credential = cred
	step(models.StateNegotiated)
	s.journalRecord(ctx, intent, cred)
	defer s.journalRemove(ctx, cred.UploadToken)

	fail := func(reason string, cause error) (*models.FileRecord, error) {
		step(models.StateCancelRequested)
		_ = s.reconciler.Cancel(ctx, cred, reason)
		step(models.StateFailed)
		log.Info(ctx, "upload failed", "reason", reason, "error", cause)
		return nil, cause
	}

	if !cred.Admits(file.Size(), file.ContentType) {
		verr := &ValidationError{
			Reason:   ReasonUnsupportedType,
			Category: req.Category,
			Message:  fmt.Sprintf("server does not accept %s of %d bytes", file.ContentType, file.Size()),
		}
		if cred.MaxFileSizeBytes > 0 && file.Size() > cred.MaxFileSizeBytes {
			verr.Reason = ReasonTooLarge
			verr.Message = fmt.Sprintf("file size exceeds %d bytes accepted by the server", cred.MaxFileSizeBytes)
		}
		return fail("file rejected by credential constraints", verr)
	}

	step(models.StateTransferring)
	outcome := s.transporter.Transfer(ctx, cred, file, req.OnProgress)
	if !outcome.Success {
		return fail("transfer failed", outcome.Err)
	}
	if err := ctx.Err(); err != nil {
		return fail("cancelled by user", err)
	}

	step(models.StateConfirmed)
	record, err := s.reconciler.Confirm(ctx, cred, outcome)
	if err != nil {
		step(models.StateFailed)
		log.Error(ctx, "confirm failed after transfer", "storage_key", cred.StorageKey, "error", err)
		return nil, err
	}
	step(models.StateSucceeded)

	record.EntityType = req.EntityType
	record.EntityID = req.EntityID
	record.FileCategory = req.Category
	record.DocumentType = req.DocumentType
	record.ContentType = file.ContentType
	if record.FileName == "" {
		record.FileName = file.Name
	}
	if record.FileSizeBytes == 0 {
		record.FileSizeBytes = file.Size()
	}

	log.Info(ctx, "upload confirmed", "file_id", record.ID, "size", record.FileSizeBytes)
	return record, nil
}

// SweepAbandoned cancels every journaled credential that has not expired
// yet and clears the journal. It returns the number of cancels sent.
func (s *uploadService) SweepAbandoned(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}

	pending, err := s.journal.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending attempts: %w", err)
	}

	n := 0
	now := s.now()
	for _, p := range pending {
		cred := &models.UploadCredential{UploadToken: p.UploadToken, StorageKey: p.StorageKey, ExpiresAt: p.ExpiresAt}
		if !cred.Expired(now) {
			_ = s.reconciler.Cancel(ctx, cred, "abandoned")
			n++
		}
		s.journalRemove(ctx, p.UploadToken)
	}
	return n, nil
}

func (s *uploadService) journalRecord(ctx context.Context, intent models.UploadIntent, cred *models.UploadCredential) {
	if s.journal == nil {
		return
	}
	err := s.journal.Record(ctx, &models.PendingAttempt{
		UploadToken:  cred.UploadToken,
		StorageKey:   cred.StorageKey,
		EntityType:   string(intent.EntityType),
		EntityID:     intent.EntityID,
		FileCategory: string(intent.FileCategory),
		FileName:     intent.FileName,
		ExpiresAt:    cred.ExpiresAt,
		CreatedAt:    s.now(),
	})
	if err != nil {
		s.log.Warn(ctx, "journal record failed", "upload_token", cred.UploadToken, "error", err)
	}
}

func (s *uploadService) journalRemove(ctx context.Context, token string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Remove(context.WithoutCancel(ctx), token); err != nil {
		s.log.Warn(ctx, "journal remove failed", "upload_token", token, "error", err)
	}
}
