package models

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// UploadIntent declares what is about to be uploaded. It is never persisted.
type UploadIntent struct {
	EntityType    common.EntityType
	EntityID      int64
	FileCategory  common.FileCategory
	DocumentType  common.DocumentType
	FileName      string
	FileSizeBytes int64
	ContentType   string
}

// UploadCredential is the time-boxed write permission issued by the metadata
// service. It belongs to exactly one attempt and is single-use.
type UploadCredential struct {
	UploadURL           string
	UploadToken         string
	StorageKey          string
	ExpiresAt           time.Time
	MaxFileSizeBytes    int64
	AllowedContentTypes []string
}

// Expired reports whether the credential can no longer be used at now.
// A zero ExpiresAt never expires.
func (c *UploadCredential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Admits reports whether the server-side constraints carried by the
// credential accept a payload of the given size and content type. Empty
// constraints admit everything.
func (c *UploadCredential) Admits(size int64, contentType string) bool {
	if c.MaxFileSizeBytes > 0 && size > c.MaxFileSizeBytes {
		return false
	}
	if len(c.AllowedContentTypes) == 0 {
		return true
	}
	ct := common.NormalizeContentType(contentType)
	return slices.ContainsFunc(c.AllowedContentTypes, func(s string) bool {
		return common.NormalizeContentType(s) == ct
	})
}

// TransferOutcome is the result of one PUT to the blob store. It is consumed
// immediately by the reconciler and never stored.
type TransferOutcome struct {
	Success      bool
	IntegrityTag string
	Err          error
}

// FileRecord is the durable artifact created by a successful confirm.
type FileRecord struct {
	ID            int64
	EntityType    common.EntityType
	EntityID      int64
	FileCategory  common.FileCategory
	DocumentType  common.DocumentType
	FileName      string
	FileSizeBytes int64
	ContentType   string
	PublicURL     string
	UploadedAt    time.Time
	UploadedBy    string
}

// EntityFileSet is a read-only projection of an entity's live files.
type EntityFileSet struct {
	EntityType     common.EntityType
	EntityID       int64
	Files          []FileRecord
	TotalSizeBytes int64
	TotalCount     int
}
