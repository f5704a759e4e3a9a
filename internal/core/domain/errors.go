package domain

import "errors"

var (
	// ErrInvalidURL rejects a malformed URL before any record is created.
	ErrInvalidURL = errors.New("invalid url")

	// ErrAccessDenied means an identity is present but does not own the scan.
	ErrAccessDenied = errors.New("access denied")

	// ErrAuthRequired means no authenticated identity where one is required.
	ErrAuthRequired = errors.New("authentication required")

	// ErrScanNotFound means the scan id is unknown.
	ErrScanNotFound = errors.New("scan not found")

	// ErrCaptureExhausted means retryable capture failures used up all attempts.
	ErrCaptureExhausted = errors.New("screenshot capture attempts exhausted")

	// ErrCaptureRejected means a non-retryable capture failure (auth,
	// rate-limit, malformed response).
	ErrCaptureRejected = errors.New("screenshot capture rejected")

	// ErrUpstreamFailure means an inference or search backend error.
	ErrUpstreamFailure = errors.New("upstream backend failure")

	// ErrStorageFailure means a record-store or blob-store error.
	ErrStorageFailure = errors.New("storage failure")
)
