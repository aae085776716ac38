package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as a missing
	// document text or question. Callers should not retry.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownFramework indicates no checklist is registered for a framework name.
	ErrUnknownFramework = errors.New("unknown framework")

	// ErrUpstream indicates the embedding or generation service failed or
	// returned a malformed response. Safe to retry.
	ErrUpstream = errors.New("upstream service failure")

	// ErrParse indicates the generation service returned non-JSON output
	// where JSON was required. It is an upstream failure.
	ErrParse = fmt.Errorf("%w: malformed generation output", ErrUpstream)

	// ErrStaleIndex indicates a corpus document was embedded with a different
	// model or vector size than the current embedding service. The document
	// must be indexed again.
	ErrStaleIndex = fmt.Errorf("%w: document indexed with a different embedding model", ErrInvalidInput)

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Advice, drafts and chat are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Nothing can be scored without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a transient provider failure (5xx or network).
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable)
}
