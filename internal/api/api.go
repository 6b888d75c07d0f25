// Package api holds the JSON bodies exchanged with the metadata service.
// The client and the reference service both use these types so the wire
// contract lives in one place.
package api

import "time"

const (
	PathRequestUpload = "/files/request-upload"
	PathConfirmUpload = "/files/confirm-upload"
	PathCancelUpload  = "/files/cancel-upload"
	PathFiles         = "/files"
	PathDeleteFile    = "/files/file"
)

// RequestUploadRequest declares an upload intent.
type RequestUploadRequest struct {
	EntityType   string `json:"entityType"`
	EntityID     int64  `json:"entityId"`
	FileCategory string `json:"fileCategory"`
	DocumentType string `json:"documentType,omitempty"`
	FileName     string `json:"fileName"`
	FileSize     int64  `json:"fileSize"`
	ContentType  string `json:"contentType"`
}

// RequestUploadResponse carries the negotiated write credential.
type RequestUploadResponse struct {
	UploadURL           string    `json:"uploadUrl"`
	UploadToken         string    `json:"uploadToken"`
	S3Key               string    `json:"s3Key"`
	ExpiresAt           time.Time `json:"expiresAt"`
	MaxFileSizeBytes    int64     `json:"maxFileSizeBytes"`
	AllowedContentTypes []string  `json:"allowedContentTypes"`
}

type ConfirmUploadRequest struct {
	UploadToken string `json:"uploadToken"`
	S3Key       string `json:"s3Key"`
	ETag        string `json:"etag,omitempty"`
}

type ConfirmUploadResponse struct {
	FileID        int64     `json:"fileId"`
	CloudFrontURL string    `json:"cloudFrontUrl"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	UploadedAt    time.Time `json:"uploadedAt"`
	UploadedBy    string    `json:"uploadedBy,omitempty"`
	Message       string    `json:"message"`
}

type CancelUploadRequest struct {
	UploadToken string `json:"uploadToken"`
	Reason      string `json:"reason"`
}

type CancelUploadResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message,omitempty"`
}

// FileMetadata describes one live file record.
type FileMetadata struct {
	ID            int64     `json:"id"`
	EntityType    string    `json:"entityType"`
	EntityID      int64     `json:"entityId"`
	FileCategory  string    `json:"fileCategory"`
	DocumentType  string    `json:"documentType,omitempty"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	ContentType   string    `json:"contentType"`
	CloudFrontURL string    `json:"cloudFrontUrl"`
	UploadedAt    time.Time `json:"uploadedAt"`
	UploadedBy    string    `json:"uploadedBy"`
}

type EntityFilesResponse struct {
	EntityType     string         `json:"entityType"`
	EntityID       int64          `json:"entityId"`
	Files          []FileMetadata `json:"files"`
	TotalFileSize  int64          `json:"totalFileSize"`
	TotalFileCount int            `json:"totalFileCount"`
}

// ErrorResponse is returned for any failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes carried in ErrorResponse.Error.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeExpired      = "EXPIRED"
	CodeInternal     = "INTERNAL_ERROR"
)
