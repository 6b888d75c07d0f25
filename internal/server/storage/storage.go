// Package storage is the blob store behind the metadata service. Clients
// never stream bytes through the service: it only presigns PUT URLs, checks
// what arrived and removes objects that are no longer referenced.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Stat when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Size        int64
	ETag        string
	ContentType string
}

// BlobStore is implemented by S3Store and MinioStore.
type BlobStore interface {
	// PresignPut returns a URL that accepts a single PUT of key with the
	// given Content-Type until ttl elapses.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PublicURL is the CDN address the object is served from.
	PublicURL(key string) string
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}
