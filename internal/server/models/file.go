package models

import "time"

// File is a confirmed, live file record. It exists only for uploads whose
// confirm succeeded.
type File struct {
	ID          int64
	UploadToken string
	AccountID   string

	EntityType   string
	EntityID     int64
	FileCategory string
	DocumentType string
	FileName     string
	FileSize     int64
	ContentType  string

	StorageKey string
	PublicURL  string

	UploadedAt time.Time
	UploadedBy string
}

// EntityOwner records which account first claimed an entity.
type EntityOwner struct {
	EntityType string
	EntityID   int64
	AccountID  string
}
