// ABOUTME: Shared error types for ingestion and retrieval
// ABOUTME: Distinguishes malformed-input, transient, logical-empty, and integrity failures
package models

import (
	"errors"
	"fmt"
)

// ErrEmbeddingUnavailable marks a transient embedding failure; retryable.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// ErrInputTooLong marks input past the embedding token ceiling; the caller
// must re-chunk, retrying is pointless.
var ErrInputTooLong = errors.New("input exceeds embedding token limit")

// ErrNoCandidates marks an empty result after filtering; non-fatal, handled
// by progressive filter relaxation.
var ErrNoCandidates = errors.New("no candidates after filtering")

// IncompleteSummaryError indicates the generation collaborator returned empty
// text for a required summary group. Ingestion of the document is retried as
// a whole.
type IncompleteSummaryError struct {
	RootID  string
	Section string
}

func (e *IncompleteSummaryError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("empty main summary for document %s", e.RootID)
	}
	return fmt.Sprintf("empty %s summary for document %s", e.Section, e.RootID)
}

// PartialCommitError indicates a document whose chunks and summary did not
// both commit. The document must be re-ingested as a whole, never patched.
type PartialCommitError struct {
	RootID string
	Stage  string
	Err    error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit for document %s at %s: %v", e.RootID, e.Stage, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }
