package domain

import "errors"

var (
	// ErrCollectionNotFound signals a missing vector collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionConflict signals that an existing collection was created
	// with a different vector dimension. Fatal: requires re-ingestion.
	ErrDimensionConflict = errors.New("collection dimension conflict")
	// ErrVectorDimMismatch signals a record whose vector does not match the
	// collection dimension. Fatal at ingestion, checked before upsert.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a retryable rate limit from a backend.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a chat generation backend failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrInvalidRequest signals a malformed client request.
	ErrInvalidRequest = errors.New("invalid request")
)

// Retryable reports whether an error is worth retrying with backoff,
// as opposed to a fatal configuration or schema problem.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
