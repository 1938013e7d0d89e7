package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or cache driver.
	ErrUnsupportedType = errors.New("unsupported type")

	// Precondition Errors.

	// ErrCorpusInvalid indicates the pattern corpus is missing, malformed or empty.
	// This is a startup precondition; nothing can be scored without a corpus.
	ErrCorpusInvalid = errors.New("pattern corpus invalid")

	// ErrEmbeddingUnavailable indicates an embedding encoder is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexMismatch indicates a component was given a corpus index that does not
	// line up with the data it was built from.
	ErrIndexMismatch = errors.New("corpus index mismatch")

	// Input Errors.

	// ErrEmptyQuery indicates a query with no text at all.
	ErrEmptyQuery = errors.New("empty query")

	// ErrStoryKeyOutOfRange indicates a story key outside the encoded query batch.
	ErrStoryKeyOutOfRange = errors.New("story key out of range")

	// External Ranker Errors.

	// ErrRankerFailed indicates the external ranking process did not terminate successfully.
	ErrRankerFailed = errors.New("ranker failed")

	// ErrMalformedRankerOutput indicates the ranker's output file could not be parsed.
	ErrMalformedRankerOutput = errors.New("malformed ranker output")

	// ErrRankerUnavailable indicates no ranker is configured.
	ErrRankerUnavailable = errors.New("ranker unavailable")
)
