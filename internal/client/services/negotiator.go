package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/client/client"
	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
)

// Negotiator obtains a write credential for one upload intent.
type Negotiator struct {
	client client.Client
}

func NewNegotiator(c client.Client) *Negotiator {
	return &Negotiator{client: c}
}

// RequestUploadURL asks the metadata service for a credential. There is no
// retry; a declined request is a *NegotiationError and a 403 an *AccessError.
func (n *Negotiator) RequestUploadURL(ctx context.Context, intent models.UploadIntent) (*models.UploadCredential, error) {
	resp, err := n.client.RequestUpload(ctx, &api.RequestUploadRequest{
		EntityType:   string(intent.EntityType),
		EntityID:     intent.EntityID,
		FileCategory: string(intent.FileCategory),
		DocumentType: string(intent.DocumentType),
		FileName:     intent.FileName,
		FileSize:     intent.FileSizeBytes,
		ContentType:  intent.ContentType,
	})
	if err != nil {
		if errors.Is(err, client.ErrForbidden) {
			return nil, &AccessError{Op: "request upload url", Err: err}
		}
		return nil, &NegotiationError{Reason: declineReason(err), Err: err}
	}

	if resp.UploadURL == "" || resp.UploadToken == "" {
		return nil, &NegotiationError{Reason: "incomplete credential in response", Err: errors.New("missing upload url or token")}
	}

	return &models.UploadCredential{
		UploadURL:           resp.UploadURL,
		UploadToken:         resp.UploadToken,
		StorageKey:          resp.S3Key,
		ExpiresAt:           resp.ExpiresAt,
		MaxFileSizeBytes:    resp.MaxFileSizeBytes,
		AllowedContentTypes: resp.AllowedContentTypes,
	}, nil
}

func declineReason(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return "metadata service unavailable"
	case errors.Is(err, client.ErrUnauthorized):
		return "not authenticated"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return err.Error()
	}
}
