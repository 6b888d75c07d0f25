// Package services contains the upload client's application services.
//
// The pipeline is Validate -> Compressor -> Negotiator -> Transporter ->
// Reconciler, driven by UploadService with one models.Attempt per call.
// ReplaceService wraps it to retire an old file after a successful upload,
// and FileService covers the read and delete calls.
//
// Failures are typed (ValidationError, NegotiationError, TransferError,
// ReconciliationError, AccessError, CleanupError); match them with errors.As.
package services
