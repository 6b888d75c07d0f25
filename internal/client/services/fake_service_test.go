package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/netx"
)

const testToken = "test-token"

type pendingUpload struct {
	key string
	req api.RequestUploadRequest
}

// fakeService is an in-memory metadata service plus blob store.
type fakeService struct {
	mu sync.Mutex

	blobs   map[string][]byte
	pending map[string]pendingUpload
	files   []api.FileMetadata
	nextID  int64
	seq     int

	calls    []string
	requests []api.RequestUploadRequest
	cancels  []api.CancelUploadRequest
	puts     []string

	ttl           time.Duration
	requestStatus int
	putStatus     int
	confirmStatus int
	cancelStatus  int
	deleteStatus  int

	srv *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		blobs:   map[string][]byte{},
		pending: map[string]pendingUpload{},
		ttl:     15 * time.Minute,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /files/request-upload", f.authed(f.requestUpload))
	mux.HandleFunc("POST /files/confirm-upload", f.authed(f.confirmUpload))
	mux.HandleFunc("POST /files/cancel-upload", f.authed(f.cancelUpload))
	mux.HandleFunc("GET /files/{entityType}/{entityId}", f.authed(f.list))
	mux.HandleFunc("GET /files/{entityType}/{entityId}/latest/{category}", f.authed(f.latest))
	mux.HandleFunc("DELETE /files/file/{id}", f.authed(f.deleteFile))
	mux.HandleFunc("PUT /blob/{key...}", f.putBlob)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) client(t *testing.T) *client.HTTPClient {
	t.Helper()
	c, err := client.NewHTTPClient(f.srv.URL, testToken)
	require.NoError(t, err)
	return c
}

func (f *fakeService) uploader() *netx.Uploader {
	return netx.NewUploader(f.srv.Client())
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeService) seedFile(m api.FileMetadata) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.files = append(f.files, m)
	return m.ID
}

func (f *fakeService) hasFile(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.files {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (f *fakeService) fileCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

func (f *fakeService) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeErr(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing token")
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: code, Message: msg})
}

func (f *fakeService) requestUpload(w http.ResponseWriter, r *http.Request) {
	var req api.RequestUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, api.CodeValidation, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	if f.requestStatus != 0 {
		writeErr(w, f.requestStatus, "DECLINED", "upload declined")
		return
	}

	f.seq++
	token := fmt.Sprintf("up-%d", f.seq)
	key := fmt.Sprintf("%s/%d/%s/%d-%s", req.EntityType, req.EntityID, req.FileCategory, f.seq, req.FileName)
	f.pending[token] = pendingUpload{key: key, req: req}

	writeJSON(w, http.StatusOK, api.RequestUploadResponse{
		UploadURL:           f.srv.URL + "/blob/" + key,
		UploadToken:         token,
		S3Key:               key,
		ExpiresAt:           time.Now().Add(f.ttl),
		MaxFileSizeBytes:    10 << 20,
		AllowedContentTypes: []string{"image/jpeg", "image/png", "image/gif", "application/pdf"},
	})
}

func (f *fakeService) putBlob(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "PUT blob")
	f.puts = append(f.puts, r.PathValue("key"))

	if f.putStatus != 0 {
		w.WriteHeader(f.putStatus)
		_, _ = w.Write([]byte("<Error><Code>AccessDenied</Code></Error>"))
		return
	}
	f.blobs[r.PathValue("key")] = body
	w.Header().Set("ETag", fmt.Sprintf(`"%d"`, len(body)))
	w.WriteHeader(http.StatusOK)
}

func (f *fakeService) confirmUpload(w http.ResponseWriter, r *http.Request) {
	var req api.ConfirmUploadRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.confirmStatus != 0 {
		writeErr(w, f.confirmStatus, api.CodeInternal, "confirm broke")
		return
	}

	p, ok := f.pending[req.UploadToken]
	if !ok || p.key != req.S3Key {
		writeErr(w, http.StatusNotFound, api.CodeNotFound, "no such upload")
		return
	}
	data, ok := f.blobs[p.key]
	if !ok {
		writeErr(w, http.StatusBadRequest, api.CodeValidation, "object missing")
		return
	}
	delete(f.pending, req.UploadToken)

	f.nextID++
	m := api.FileMetadata{
		ID:            f.nextID,
		EntityType:    p.req.EntityType,
		EntityID:      p.req.EntityID,
		FileCategory:  p.req.FileCategory,
		DocumentType:  p.req.DocumentType,
		FileName:      p.req.FileName,
		FileSize:      int64(len(data)),
		ContentType:   p.req.ContentType,
		CloudFrontURL: "https://cdn.example.com/" + p.key,
		UploadedAt:    time.Now().UTC(),
		UploadedBy:    "user-1",
	}
	f.files = append(f.files, m)

	writeJSON(w, http.StatusOK, api.ConfirmUploadResponse{
		FileID: m.ID, CloudFrontURL: m.CloudFrontURL, FileName: m.FileName,
		FileSize: m.FileSize, UploadedAt: m.UploadedAt, UploadedBy: m.UploadedBy,
		Message: "File uploaded successfully",
	})
}

func (f *fakeService) cancelUpload(w http.ResponseWriter, r *http.Request) {
	var req api.CancelUploadRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, req)

	if f.cancelStatus != 0 {
		writeErr(w, f.cancelStatus, api.CodeInternal, "cancel broke")
		return
	}
	delete(f.pending, req.UploadToken)
	writeJSON(w, http.StatusOK, api.CancelUploadResponse{Cancelled: true})
}

func (f *fakeService) matching(r *http.Request) []api.FileMetadata {
	id, _ := strconv.ParseInt(r.PathValue("entityId"), 10, 64)
	category := r.PathValue("category")
	if category == "" {
		category = r.URL.Query().Get("fileCategory")
	}

	var out []api.FileMetadata
	for _, m := range f.files {
		if !strings.EqualFold(m.EntityType, r.PathValue("entityType")) || m.EntityID != id {
			continue
		}
		if category != "" && m.FileCategory != category {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeService) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	files := f.matching(r)
	resp := api.EntityFilesResponse{EntityType: r.PathValue("entityType"), Files: files, TotalFileCount: len(files)}
	resp.EntityID, _ = strconv.ParseInt(r.PathValue("entityId"), 10, 64)
	for _, m := range files {
		resp.TotalFileSize += m.FileSize
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeService) latest(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	files := f.matching(r)
	if len(files) == 0 {
		writeErr(w, http.StatusNotFound, api.CodeNotFound, "no file")
		return
	}
	writeJSON(w, http.StatusOK, files[len(files)-1])
}

func (f *fakeService) deleteFile(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteStatus != 0 {
		writeErr(w, f.deleteStatus, api.CodeInternal, "delete broke")
		return
	}
	for i, m := range f.files {
		if m.ID == id {
			f.files = append(f.files[:i], f.files[i+1:]...)
			writeJSON(w, http.StatusOK, true)
			return
		}
	}
	writeErr(w, http.StatusNotFound, api.CodeNotFound, "file not found")
}
