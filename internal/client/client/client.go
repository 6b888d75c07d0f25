package client

import (
	"context"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
)

// Client is the transport contract with the metadata service.
type Client interface {
	Close() error
	RequestUpload(ctx context.Context, req *api.RequestUploadRequest) (*api.RequestUploadResponse, error)
	ConfirmUpload(ctx context.Context, req *api.ConfirmUploadRequest) (*api.ConfirmUploadResponse, error)
	CancelUpload(ctx context.Context, req *api.CancelUploadRequest) (*api.CancelUploadResponse, error)
	ListFiles(ctx context.Context, entityType string, entityID int64, category string) (*api.EntityFilesResponse, error)
	LatestFile(ctx context.Context, entityType string, entityID int64, category string) (*api.FileMetadata, error)
	DeleteFile(ctx context.Context, fileID int64) (bool, error)
}
