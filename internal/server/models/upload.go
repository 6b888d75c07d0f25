// Package models defines server-side data models persisted in the database.
package models

import "time"

// UploadStatus tracks a pending upload through its single-use lifetime.
type UploadStatus string

const (
	UploadPending   UploadStatus = "pending"
	UploadConfirmed UploadStatus = "confirmed"
	UploadCancelled UploadStatus = "cancelled"
	UploadExpired   UploadStatus = "expired"
)

// PendingUpload is the server half of an issued upload credential.
type PendingUpload struct {
	// UploadToken is the opaque single-use handle given to the client.
	UploadToken string
	// AccountID and UserID identify who requested the credential.
	AccountID string
	UserID    string

	EntityType   string
	EntityID     int64
	FileCategory string
	// DocumentType is empty for image categories.
	DocumentType string
	FileName     string
	FileSize     int64
	ContentType  string

	// StorageKey is the object key the presigned URL writes to.
	StorageKey string
	// MaxFileSize is the limit the stored object is checked against on confirm.
	MaxFileSize int64

	Status    UploadStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the credential can no longer be confirmed at now.
func (u *PendingUpload) Expired(now time.Time) bool {
	return !now.Before(u.ExpiresAt)
}
