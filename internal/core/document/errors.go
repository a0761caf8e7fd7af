package document

import "errors"

var (
	// ErrInvalidKind is returned for an unknown document kind.
	ErrInvalidKind = errors.New("invalid document kind")
	// ErrRecordNotFound is returned when the backend has no record for the id.
	ErrRecordNotFound = errors.New("document record not found")
	// ErrSourceUnavailable covers network failures and 5xx answers from the backend.
	ErrSourceUnavailable = errors.New("document source unavailable")
	// ErrGenerationFailed wraps any layout, export or sink failure.
	ErrGenerationFailed = errors.New("generation failed, please retry")
)
