// ABOUTME: DualStore contract for the two-collection vector index
// ABOUTME: Summaries and Chunks are independently indexed and pre-filterable
package storage

import (
	"context"
	"math"

	"github.com/guidewell/policyrag/internal/models"
)

// Filter restricts a vector search before ranking. Zero values mean no
// constraint. Filters are applied as pre-filters so true matches outside the
// unfiltered top-K are not discarded.
type Filter struct {
	// Products matches records whose product set intersects this one.
	Products []string
	// SectionType matches chunks with exactly this section type.
	SectionType models.SectionType
	// RootIDs restricts to the given documents.
	RootIDs []string
}

// IsZero reports whether the filter imposes no constraint.
func (f Filter) IsZero() bool {
	return len(f.Products) == 0 && f.SectionType == "" && len(f.RootIDs) == 0
}

// SummaryHit is one summary-search result with its raw cosine similarity.
type SummaryHit struct {
	Record     models.SummaryRecord
	Similarity float64
}

// ChunkHit is one chunk-search result with its raw cosine similarity.
type ChunkHit struct {
	Chunk      models.Chunk
	Similarity float64
}

// DualStore persists the Summaries and Chunks collections. A document's
// chunks and its summary commit independently; callers own the
// both-or-neither guarantee.
type DualStore interface {
	// Init ensures both collections exist with the given vector dimension.
	Init(ctx context.Context, dimension int) error

	UpsertSummary(ctx context.Context, rec models.SummaryRecord) error
	UpsertChunks(ctx context.Context, chunks []models.Chunk) error

	// DeleteDocument removes a document's summary and chunks from both
	// collections. Used to supersede on re-ingestion and to roll back a
	// partial commit.
	DeleteDocument(ctx context.Context, rootID string) error

	SearchSummaries(ctx context.Context, vector []float64, filter Filter, numCandidates, limit int) ([]SummaryHit, error)
	SearchChunks(ctx context.Context, vector []float64, filter Filter, numCandidates, limit int) ([]ChunkHit, error)
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ProductsIntersect reports whether two product sets share a code.
func ProductsIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
