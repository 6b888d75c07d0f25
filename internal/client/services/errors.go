package services

import (
	"fmt"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

// ValidationReason says which local check rejected a file.
type ValidationReason string

const (
	ReasonTooLarge             ValidationReason = "too_large"
	ReasonUnsupportedType      ValidationReason = "unsupported_type"
	ReasonUnsupportedExtension ValidationReason = "unsupported_extension"
)

// ValidationError is returned before any network call is made.
type ValidationError struct {
	Reason   ValidationReason
	Category common.FileCategory
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Message)
}

func (e *ValidationError) Unwrap() error { return nil }

// NegotiationError means the metadata service did not issue a credential.
type NegotiationError struct {
	Reason string
	Err    error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("upload url negotiation failed: %s", e.Reason)
}

func (e *NegotiationError) Unwrap() error { return e.Err }

// TransferError is a failed PUT to the blob store. StatusCode is zero for
// network failures and expired credentials.
type TransferError struct {
	StatusCode int
	Err        error
}

func (e *TransferError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transfer failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transfer failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ReconciliationError means the bytes reached the blob store but the
// metadata service did not record them. No file record exists.
type ReconciliationError struct {
	UploadToken string
	StorageKey  string
	Err         error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("confirm upload %s failed: %v", e.StorageKey, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// AccessError is a 403 from the metadata service.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: access denied: %v", e.Op, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// CleanupError is a failed compensating action. Callers log it and move on.
type CleanupError struct {
	Op     string
	Target string
	Err    error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup %s %s failed: %v", e.Op, e.Target, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
