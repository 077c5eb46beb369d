// ABOUTME: In-memory DualStore using brute-force cosine similarity
// ABOUTME: Backs tests and local experimentation; same filter semantics as Qdrant
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/guidewell/policyrag/internal/models"
	"github.com/guidewell/policyrag/internal/storage"
)

// Store is a brute-force in-memory implementation of storage.DualStore.
type Store struct {
	mu        sync.RWMutex
	dimension int
	summaries map[string]models.SummaryRecord
	chunks    map[string][]models.Chunk
}

// NewStore creates an empty in-memory dual store.
func NewStore() *Store {
	return &Store{
		summaries: make(map[string]models.SummaryRecord),
		chunks:    make(map[string][]models.Chunk),
	}
}

func (s *Store) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

func (s *Store) UpsertSummary(_ context.Context, rec models.SummaryRecord) error {
	if rec.RootID == "" {
		return errors.New("summary record missing root_id")
	}
	if s.dimension > 0 && len(rec.MainSummary.Embedding) != s.dimension {
		return errors.New("summary embedding dimension mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[rec.RootID] = rec
	return nil
}

func (s *Store) UpsertChunks(_ context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if c.RootID == "" {
			return errors.New("chunk missing root_id")
		}
		if s.dimension > 0 && len(c.Embedding) != s.dimension {
			return errors.New("chunk embedding dimension mismatch")
		}
	}
	// Group by document so re-upserting a document replaces its chunk set.
	byRoot := make(map[string][]models.Chunk)
	for _, c := range chunks {
		byRoot[c.RootID] = append(byRoot[c.RootID], c)
	}
	for rootID, group := range byRoot {
		s.chunks[rootID] = group
	}
	return nil
}

func (s *Store) DeleteDocument(_ context.Context, rootID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.summaries, rootID)
	delete(s.chunks, rootID)
	return nil
}

func (s *Store) SearchSummaries(_ context.Context, vector []float64, filter storage.Filter, numCandidates, limit int) ([]storage.SummaryHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []storage.SummaryHit
	for _, rec := range s.summaries {
		if !summaryMatches(rec, filter) {
			continue
		}
		hits = append(hits, storage.SummaryHit{
			Record:     rec,
			Similarity: storage.CosineSimilarity(vector, rec.MainSummary.Embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Record.RootID < hits[j].Record.RootID
	})

	return truncateSummaries(hits, numCandidates, limit), nil
}

func (s *Store) SearchChunks(_ context.Context, vector []float64, filter storage.Filter, numCandidates, limit int) ([]storage.ChunkHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []storage.ChunkHit
	for _, group := range s.chunks {
		for _, c := range group {
			if !chunkMatches(c, filter) {
				continue
			}
			hits = append(hits, storage.ChunkHit{
				Chunk:      c,
				Similarity: storage.CosineSimilarity(vector, c.Embedding),
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Chunk.ChunkID < hits[j].Chunk.ChunkID
	})

	return truncateChunks(hits, numCandidates, limit), nil
}

func summaryMatches(rec models.SummaryRecord, f storage.Filter) bool {
	if len(f.Products) > 0 && !storage.ProductsIntersect(rec.Products, f.Products) {
		return false
	}
	if len(f.RootIDs) > 0 && !containsString(f.RootIDs, rec.RootID) {
		return false
	}
	// SectionType does not apply to summaries.
	return true
}

func chunkMatches(c models.Chunk, f storage.Filter) bool {
	if len(f.Products) > 0 && !storage.ProductsIntersect(c.Metadata.Products, f.Products) {
		return false
	}
	if f.SectionType != "" && c.Metadata.SectionType != f.SectionType {
		return false
	}
	if len(f.RootIDs) > 0 && !containsString(f.RootIDs, c.RootID) {
		return false
	}
	return true
}

func truncateSummaries(hits []storage.SummaryHit, numCandidates, limit int) []storage.SummaryHit {
	if numCandidates > 0 && len(hits) > numCandidates {
		hits = hits[:numCandidates]
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func truncateChunks(hits []storage.ChunkHit, numCandidates, limit int) []storage.ChunkHit {
	if numCandidates > 0 && len(hits) > numCandidates {
		hits = hits[:numCandidates]
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
