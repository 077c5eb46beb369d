// ABOUTME: Tests for retrieval orchestration over a scripted store double
// ABOUTME: Covers strategy routing, pre-filters, relaxation, pairing, timeouts
package core

import (
	"context"
	"sync"
	"testing"

	"github.com/guidewell/policyrag/internal/models"
	"github.com/guidewell/policyrag/internal/storage"
)

type fakeStore struct {
	mu            sync.Mutex
	summaryHits   []storage.SummaryHit
	chunkSearches []storage.Filter
	chunkFn       func(filter storage.Filter) ([]storage.ChunkHit, error)
}

func (s *fakeStore) Init(context.Context, int) error                           { return nil }
func (s *fakeStore) UpsertSummary(context.Context, models.SummaryRecord) error { return nil }
func (s *fakeStore) UpsertChunks(context.Context, []models.Chunk) error        { return nil }
func (s *fakeStore) DeleteDocument(context.Context, string) error              { return nil }

func (s *fakeStore) SearchSummaries(_ context.Context, _ []float64, _ storage.Filter, _, limit int) ([]storage.SummaryHit, error) {
	hits := s.summaryHits
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *fakeStore) SearchChunks(_ context.Context, _ []float64, filter storage.Filter, _, _ int) ([]storage.ChunkHit, error) {
	s.mu.Lock()
	s.chunkSearches = append(s.chunkSearches, filter)
	s.mu.Unlock()
	if s.chunkFn == nil {
		return nil, nil
	}
	return s.chunkFn(filter)
}

func chunkHit(rootID, path, product string, section models.SectionType, content string, similarity float64) storage.ChunkHit {
	return storage.ChunkHit{
		Chunk: models.Chunk{
			ChunkID: rootID + ":0",
			RootID:  rootID,
			Text:    content,
			Metadata: models.ChunkMetadata{
				ComponentPath: path,
				Products:      []string{product},
				ContentType:   models.ContentTypeGeneralInfo,
				SectionType:   section,
				TopicCategory: "requirements",
			},
		},
		Similarity: similarity,
	}
}

func newTestRetriever(store storage.DualStore) *Retriever {
	cfg := DefaultRetrieverConfig()
	cfg.QueryTimeout = 0
	return NewRetriever(store, &fakeEmbedder{}, NewQueryClassifier(testVocabulary()), NewScorer(0.05, 0.10), cfg)
}

func TestRetrieve_GeneralUsesSummaries(t *testing.T) {
	store := &fakeStore{
		summaryHits: []storage.SummaryHit{{
			Record: models.SummaryRecord{
				RootID:        "x37806",
				PageTitle:     "Lien Subordination Overview",
				ComponentPath: "x37806_x111544",
				MainSummary:   models.SummaryEntry{Text: "Covers subordination policy."},
				Products:      []string{"VA"},
			},
			Similarity: 0.82,
		}},
	}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "Tell me about lien subordination")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Strategy != StrategySummaryFirst {
		t.Errorf("Strategy = %s, want %s", result.Strategy, StrategySummaryFirst)
	}
	if len(result.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(result.Results))
	}
	res := result.Results[0]
	if res.Kind != models.ResultSummary {
		t.Errorf("Kind = %s, want summary", res.Kind)
	}
	if res.Citation.Title != "Lien Subordination Overview" {
		t.Errorf("Citation.Title = %s", res.Citation.Title)
	}
	if len(store.chunkSearches) != 0 {
		t.Error("general query with summary hits should not touch the chunk collection")
	}
}

func TestRetrieve_GeneralFallsBackToChunks(t *testing.T) {
	store := &fakeStore{
		chunkFn: func(storage.Filter) ([]storage.ChunkHit, error) {
			return []storage.ChunkHit{chunkHit("x1", "x1_x2", "VA", models.SectionInformation, "some detail", 0.7)}, nil
		},
	}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "Tell me about lien subordination")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Strategy != StrategySummaryFirst {
		t.Errorf("Strategy = %s, want %s", result.Strategy, StrategySummaryFirst)
	}
	if len(result.Results) != 1 || result.Results[0].Kind != models.ResultChunk {
		t.Errorf("fallback should return chunk results, got %+v", result.Results)
	}
}

func TestRetrieve_ProductSpecificFilters(t *testing.T) {
	store := &fakeStore{
		chunkFn: func(filter storage.Filter) ([]storage.ChunkHit, error) {
			return []storage.ChunkHit{
				chunkHit("x1", "x1_x2_x3", "VA", models.SectionRequirement, "PACE liens must be subordinate.", 0.80),
			}, nil
		},
	}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "What are the VA loan modification requirements for PACE liens?")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Strategy != StrategyDetailed {
		t.Errorf("Strategy = %s, want %s", result.Strategy, StrategyDetailed)
	}

	if len(store.chunkSearches) != 1 {
		t.Fatalf("chunk searches = %d, want 1", len(store.chunkSearches))
	}
	filter := store.chunkSearches[0]
	if len(filter.Products) != 1 || filter.Products[0] != "VA" {
		t.Errorf("filter.Products = %v, want [VA]", filter.Products)
	}
	if filter.SectionType != models.SectionRequirement {
		t.Errorf("filter.SectionType = %s, want requirement", filter.SectionType)
	}

	// Raw 0.80 + topic 0.05 + product 0.10.
	res := result.Results[0]
	if diff := res.Confidence - 0.95; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Confidence = %f, want 0.95", res.Confidence)
	}
}

func TestRetrieve_RelaxesFiltersWhenEmpty(t *testing.T) {
	store := &fakeStore{
		chunkFn: func(filter storage.Filter) ([]storage.ChunkHit, error) {
			if filter.SectionType != "" {
				return nil, nil
			}
			return []storage.ChunkHit{chunkHit("x1", "x1_x2", "VA", models.SectionInformation, "related info", 0.6)}, nil
		},
	}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "What are the VA appraisal requirements?")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("results = %d, want 1 after relaxation", len(result.Results))
	}

	if len(store.chunkSearches) != 2 {
		t.Fatalf("chunk searches = %d, want 2 (strict then relaxed)", len(store.chunkSearches))
	}
	if store.chunkSearches[0].SectionType == "" {
		t.Error("first search should carry the section filter")
	}
	if store.chunkSearches[1].SectionType != "" {
		t.Error("second search should drop the section filter")
	}
	if len(store.chunkSearches[1].Products) == 0 {
		t.Error("product filter should survive the first relaxation step")
	}
}

func TestRetrieve_ComparisonPairsByComponent(t *testing.T) {
	store := &fakeStore{
		chunkFn: func(filter storage.Filter) ([]storage.ChunkHit, error) {
			switch filter.Products[0] {
			case "VA":
				return []storage.ChunkHit{chunkHit("x1", "x1_x2_x3", "VA", models.SectionRequirement, "VA requires full payoff.", 0.9)}, nil
			case "FHA":
				return []storage.ChunkHit{chunkHit("x9", "x9_x2_x4", "FHA", models.SectionRequirement, "FHA allows subordination.", 0.85)}, nil
			}
			return nil, nil
		},
	}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "Compare VA and FHA PACE lien requirements")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Strategy != StrategyComparison {
		t.Errorf("Strategy = %s, want %s", result.Strategy, StrategyComparison)
	}
	if len(result.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(result.Results))
	}

	// One search per product, each pinned to that product.
	if len(store.chunkSearches) != 2 {
		t.Fatalf("chunk searches = %d, want 2", len(store.chunkSearches))
	}
	for _, filter := range store.chunkSearches {
		if len(filter.Products) != 1 {
			t.Errorf("comparison arm filter.Products = %v, want exactly one", filter.Products)
		}
	}

	if len(result.Groups) == 0 {
		t.Fatal("comparison result carries no groups")
	}
	for _, group := range result.Groups {
		if group.Key == "" {
			t.Error("group key empty")
		}
		for _, res := range group.Results {
			if res.PairKey != group.Key {
				t.Errorf("result pair key %s in group %s", res.PairKey, group.Key)
			}
		}
	}
}

func TestRetrieve_ComparisonTimeoutDegrades(t *testing.T) {
	store := &fakeStore{
		chunkFn: func(filter storage.Filter) ([]storage.ChunkHit, error) {
			if filter.Products[0] == "FHA" {
				return nil, context.DeadlineExceeded
			}
			return []storage.ChunkHit{chunkHit("x1", "x1_x2", "VA", models.SectionRequirement, "VA detail.", 0.8)}, nil
		},
	}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "Compare VA and FHA escrow requirements")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !result.Degraded {
		t.Error("timed-out comparison arm should mark the result degraded")
	}
	if len(result.Results) != 1 {
		t.Errorf("results = %d, want the surviving arm's 1", len(result.Results))
	}
}

func TestRetrieve_ComparisonEmptyIndexReturnsEmpty(t *testing.T) {
	store := &fakeStore{}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "Compare VA and FHA PACE lien requirements")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Strategy != StrategyComparison {
		t.Errorf("Strategy = %s, want %s", result.Strategy, StrategyComparison)
	}
	if len(result.Results) != 0 {
		t.Errorf("results = %d, want 0 on an empty index", len(result.Results))
	}
	if result.Degraded {
		t.Error("an empty index is not a degraded result")
	}

	// Both arms still walk the full relaxation ladder.
	if len(store.chunkSearches) < 2 {
		t.Errorf("chunk searches = %d, want at least one per product", len(store.chunkSearches))
	}
}

func TestRetrieve_DedupesEquivalentContent(t *testing.T) {
	store := &fakeStore{
		chunkFn: func(storage.Filter) ([]storage.ChunkHit, error) {
			return []storage.ChunkHit{
				chunkHit("x1", "x1_x2", "VA", models.SectionRequirement, "The lien must be recorded.", 0.9),
				chunkHit("x2", "x2_x3", "VA", models.SectionRequirement, "the  lien must be   recorded.", 0.7),
			}, nil
		},
	}
	r := newTestRetriever(store)

	result, err := r.Retrieve(context.Background(), "What are the VA recording requirements?")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("results = %d, want 1 after dedup", len(result.Results))
	}
	if result.Results[0].RootID != "x1" {
		t.Errorf("dedup kept %s, want the higher-ranked x1", result.Results[0].RootID)
	}
}
