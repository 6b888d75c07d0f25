package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/logging"
	"github.com/dmitrijs2005/rentkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/rentkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// FileAPI is the service surface the handlers call.
type FileAPI interface {
	RequestUpload(ctx context.Context, id services.Identity, req api.RequestUploadRequest) (*api.RequestUploadResponse, error)
	ConfirmUpload(ctx context.Context, id services.Identity, req api.ConfirmUploadRequest) (*api.ConfirmUploadResponse, error)
	CancelUpload(ctx context.Context, id services.Identity, req api.CancelUploadRequest) (*api.CancelUploadResponse, error)
	ListFiles(ctx context.Context, id services.Identity, entityType string, entityID int64, category string) (*api.EntityFilesResponse, error)
	LatestFile(ctx context.Context, id services.Identity, entityType string, entityID int64, category string) (*api.FileMetadata, error)
	DeleteFile(ctx context.Context, id services.Identity, fileID int64) error
}

// Pinger reports database health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var _ Pinger = (*sql.DB)(nil)

type Handler struct {
	files     FileAPI
	db        Pinger
	jwtSecret []byte
	metrics   *metrics.Metrics
	logger    logging.Logger
}

func NewHandler(files FileAPI, db Pinger, jwtSecret []byte, m *metrics.Metrics, l logging.Logger) *Handler {
	if l == nil {
		l = logging.Nop()
	}
	if db == nil {
		db = nopPinger{}
	}
	return &Handler{
		files:     files,
		db:        db,
		jwtSecret: jwtSecret,
		metrics:   m,
		logger:    l.With("module", "http_handler"),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, code, msg)
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, api.CodeValidation, msg)
}

func (h *Handler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req api.RequestUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	resp, err := h.files.RequestUpload(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req api.ConfirmUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.UploadToken == "" || req.S3Key == "" {
		h.badRequest(w, "uploadToken and s3Key are required")
		return
	}

	resp, err := h.files.ConfirmUpload(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CancelUpload(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req api.CancelUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.UploadToken == "" {
		h.badRequest(w, "uploadToken is required")
		return
	}

	resp, err := h.files.CancelUpload(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	entityID, ok := h.int64Param(w, r, "entityId")
	if !ok {
		return
	}

	resp, err := h.files.ListFiles(r.Context(), id, chi.URLParam(r, "entityType"), entityID, r.URL.Query().Get("fileCategory"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) LatestFile(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	entityID, ok := h.int64Param(w, r, "entityId")
	if !ok {
		return
	}

	resp, err := h.files.LatestFile(r.Context(), id, chi.URLParam(r, "entityType"), entityID, chi.URLParam(r, "fileCategory"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	fileID, ok := h.int64Param(w, r, "fileId")
	if !ok {
		return
	}

	if err := h.files.DeleteFile(r.Context(), id, fileID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, true)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		h.badRequest(w, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}

// errNoPinger is reported by /healthz when no database is attached.
var errNoPinger = errors.New("no database configured")

type nopPinger struct{}

func (nopPinger) PingContext(context.Context) error { return errNoPinger }
