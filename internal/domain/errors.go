package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed or incomplete request or record.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrIndexUnavailable signals a similarity index backend failure.
	ErrIndexUnavailable = errors.New("similarity index unavailable")
	// ErrMalformedRecord signals stored investor metadata that cannot be parsed.
	ErrMalformedRecord = errors.New("malformed stored record")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
