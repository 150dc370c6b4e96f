package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyTranscript   = errors.New("transcript has no segments")
	ErrMalformedDocument = errors.New("malformed document")
)
