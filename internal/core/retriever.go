// ABOUTME: Retriever routes classified queries across the two-tier index
// ABOUTME: Summary-first for broad queries, filtered chunk search otherwise
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/guidewell/policyrag/internal/models"
	"github.com/guidewell/policyrag/internal/storage"
)

// Retrieval strategies reported on every result set.
const (
	StrategySummaryFirst = "summary_first"
	StrategyDetailed     = "detailed"
	StrategyComparison   = "comparison"
)

// RetrieverConfig bounds one retrieval.
type RetrieverConfig struct {
	// NumCandidates is the pre-ranking candidate pool per vector search.
	NumCandidates int
	// SummaryLimit caps summary-first results.
	SummaryLimit int
	// DetailedLimit caps chunk results per search.
	DetailedLimit int
	// QueryTimeout bounds the whole retrieval; partial results past the
	// deadline come back marked Degraded. Zero disables the bound.
	QueryTimeout time.Duration
}

// DefaultRetrieverConfig returns the reference configuration.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{NumCandidates: 50, SummaryLimit: 1, DetailedLimit: 10, QueryTimeout: 15 * time.Second}
}

// Retriever executes the full query path: classify, embed, search, score,
// rank. Identical queries over an unchanged index return identical rankings.
type Retriever struct {
	store      storage.DualStore
	embedder   Embedder
	classifier *QueryClassifier
	scorer     *Scorer
	cfg        RetrieverConfig
}

// NewRetriever wires the retrieval pipeline together.
func NewRetriever(store storage.DualStore, embedder Embedder, classifier *QueryClassifier, scorer *Scorer, cfg RetrieverConfig) *Retriever {
	return &Retriever{store: store, embedder: embedder, classifier: classifier, scorer: scorer, cfg: cfg}
}

// Retrieve answers one query. The classification decides the strategy:
// general queries hit the summary collection, everything else the chunk
// collection with metadata pre-filters.
func (r *Retriever) Retrieve(ctx context.Context, query string) (models.RetrievalResult, error) {
	if r.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.QueryTimeout)
		defer cancel()
	}

	classification := r.classifier.Classify(query)
	log.Printf("[Retriever] query classified as %s (products=%v topic=%s)",
		classification.Type, classification.Products, classification.TopicCategory)

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("embedding query: %w", err)
	}

	switch classification.Type {
	case models.QueryComparison:
		return r.retrieveComparison(ctx, vector, classification)
	case models.QueryGeneral:
		return r.retrieveGeneral(ctx, vector, classification)
	default:
		return r.retrieveDetailed(ctx, vector, classification)
	}
}

// retrieveGeneral searches the summary collection first and falls back to
// chunks only when no document summary is close enough.
func (r *Retriever) retrieveGeneral(ctx context.Context, vector []float64, classification models.QueryClassification) (models.RetrievalResult, error) {
	hits, err := r.store.SearchSummaries(ctx, vector, storage.Filter{}, r.cfg.NumCandidates, r.cfg.SummaryLimit)
	if err != nil {
		return models.RetrievalResult{}, fmt.Errorf("summary search: %w", err)
	}

	if len(hits) == 0 {
		log.Printf("[Retriever] no summary candidates, falling back to chunk search")
		result, err := r.retrieveDetailed(ctx, vector, classification)
		if err != nil {
			return models.RetrievalResult{}, err
		}
		result.Strategy = StrategySummaryFirst
		return result, nil
	}

	results := make([]models.ScoredResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, r.scoreSummaryHit(hit, classification))
	}
	models.SortResults(results)
	return models.RetrievalResult{Results: results, Strategy: StrategySummaryFirst}, nil
}

// retrieveDetailed searches the chunk collection with the classification's
// pre-filters, relaxing them stepwise when nothing matches.
func (r *Retriever) retrieveDetailed(ctx context.Context, vector []float64, classification models.QueryClassification) (models.RetrievalResult, error) {
	hits, err := r.searchChunksRelaxing(ctx, vector, baseFilter(classification), r.cfg.DetailedLimit)
	if err != nil {
		return models.RetrievalResult{}, err
	}

	results := make([]models.ScoredResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, r.scoreChunkHit(hit, classification))
	}
	models.SortResults(results)
	results = dedupeByContent(results)
	if len(results) > r.cfg.DetailedLimit {
		results = results[:r.cfg.DetailedLimit]
	}
	return models.RetrievalResult{Results: results, Strategy: StrategyDetailed}, nil
}

// retrieveComparison fans out one filtered search per product and pairs
// corresponding results across products. A deadline hit mid-fan-out degrades
// the result instead of failing it.
func (r *Retriever) retrieveComparison(ctx context.Context, vector []float64, classification models.QueryClassification) (models.RetrievalResult, error) {
	type productHits struct {
		product string
		hits    []storage.ChunkHit
		err     error
	}

	out := make([]productHits, len(classification.Products))
	var wg sync.WaitGroup
	for i, product := range classification.Products {
		wg.Add(1)
		go func(i int, product string) {
			defer wg.Done()
			filter := baseFilter(classification)
			filter.Products = []string{product}
			hits, err := r.searchChunksRelaxing(ctx, vector, filter, r.cfg.DetailedLimit)
			out[i] = productHits{product: product, hits: hits, err: err}
		}(i, product)
	}
	wg.Wait()

	degraded := false
	var results []models.ScoredResult
	for _, ph := range out {
		if ph.err != nil {
			if errors.Is(ph.err, context.DeadlineExceeded) {
				log.Printf("[Retriever] comparison arm %s timed out, returning partial results", ph.product)
				degraded = true
				continue
			}
			return models.RetrievalResult{}, fmt.Errorf("comparison search for %s: %w", ph.product, ph.err)
		}
		for _, hit := range ph.hits {
			results = append(results, r.scoreChunkHit(hit, classification))
		}
	}
	// An exhausted relaxation ladder on every arm yields an empty result,
	// matching the summary-first and detailed paths.
	models.SortResults(results)
	results = dedupeByContent(results)

	return models.RetrievalResult{
		Results:  results,
		Groups:   pairResults(results),
		Strategy: StrategyComparison,
		Degraded: degraded,
	}, nil
}

// searchChunksRelaxing runs the chunk search, dropping the section-type
// filter and then the product filter when a stricter pass finds nothing.
func (r *Retriever) searchChunksRelaxing(ctx context.Context, vector []float64, filter storage.Filter, limit int) ([]storage.ChunkHit, error) {
	for _, f := range relaxationLadder(filter) {
		hits, err := r.store.SearchChunks(ctx, vector, f, r.cfg.NumCandidates, limit)
		if err != nil && !errors.Is(err, models.ErrNoCandidates) {
			return nil, err
		}
		if len(hits) > 0 {
			return hits, nil
		}
	}
	return nil, nil
}

// relaxationLadder yields the filter and its progressively looser variants,
// most specific first, without duplicate steps.
func relaxationLadder(filter storage.Filter) []storage.Filter {
	ladder := []storage.Filter{filter}
	if filter.SectionType != "" {
		loose := filter
		loose.SectionType = ""
		ladder = append(ladder, loose)
	}
	if len(filter.Products) > 0 {
		loose := ladder[len(ladder)-1]
		loose.Products = nil
		ladder = append(ladder, loose)
	}
	return ladder
}

// baseFilter derives the chunk pre-filter from the classification. Procedure
// intent pins the procedure section; a requirements topic pins the
// requirement section for product-specific lookups.
func baseFilter(classification models.QueryClassification) storage.Filter {
	filter := storage.Filter{Products: classification.Products}
	switch {
	case classification.Type == models.QueryProcedure:
		filter.SectionType = models.SectionProcedure
	case classification.TopicCategory == "requirements":
		filter.SectionType = models.SectionRequirement
	}
	return filter
}

func (r *Retriever) scoreChunkHit(hit storage.ChunkHit, classification models.QueryClassification) models.ScoredResult {
	chunk := hit.Chunk
	topicMatch := topicMatches(classification.TopicCategory, chunk.Metadata.TopicCategory)
	productMatch := storage.ProductsIntersect(classification.Products, chunk.Metadata.Products)

	return models.ScoredResult{
		Kind:          models.ResultChunk,
		RootID:        chunk.RootID,
		Content:       chunk.Text,
		ComponentPath: chunk.Metadata.ComponentPath,
		SectionType:   chunk.Metadata.SectionType,
		Products:      chunk.Metadata.Products,
		RawSimilarity: hit.Similarity,
		Confidence:    r.scorer.Score(hit.Similarity, topicMatch, productMatch),
		Citation:      r.scorer.Citation(chunk.Metadata.ComponentPath, "", chunk.Metadata.SectionType),
		PairKey:       pairKey(chunk.Metadata.ContentType, chunk.Metadata.ComponentPath),
	}
}

func (r *Retriever) scoreSummaryHit(hit storage.SummaryHit, classification models.QueryClassification) models.ScoredResult {
	record := hit.Record
	topicMatch := topicMatches(classification.TopicCategory, record.TopicCategory)
	productMatch := storage.ProductsIntersect(classification.Products, record.Products)

	return models.ScoredResult{
		Kind:          models.ResultSummary,
		RootID:        record.RootID,
		Content:       record.MainSummary.Text,
		ComponentPath: record.ComponentPath,
		Products:      record.Products,
		RawSimilarity: hit.Similarity,
		Confidence:    r.scorer.Score(hit.Similarity, topicMatch, productMatch),
		Citation:      models.Citation{ComponentPath: record.ComponentPath, Title: record.PageTitle},
	}
}

func topicMatches(queryTopic, recordTopic string) bool {
	return queryTopic != "" && queryTopic != "general" && queryTopic == recordTopic
}

// pairKey groups comparison results that describe the same kind of content in
// the same policy area: content type plus the category-level path prefix.
func pairKey(contentType models.ContentType, componentPath string) string {
	prefix := componentPath
	if cp, err := models.ParsePath(componentPath); err == nil {
		prefix = cp.CategoryPrefix()
	}
	return string(contentType) + "|" + prefix
}

// pairResults buckets scored results by pair key, keys sorted, results within
// a group keeping their rank order.
func pairResults(results []models.ScoredResult) []models.ComparisonGroup {
	byKey := make(map[string][]models.ScoredResult)
	for _, res := range results {
		byKey[res.PairKey] = append(byKey[res.PairKey], res)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]models.ComparisonGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, models.ComparisonGroup{Key: key, Results: byKey[key]})
	}
	return groups
}

// dedupeByContent drops results whose normalized content was already seen,
// keeping the first (sorted callers keep the best-ranked copy).
func dedupeByContent(results []models.ScoredResult) []models.ScoredResult {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, res := range results {
		key := strings.Join(strings.Fields(strings.ToLower(res.Content)), " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, res)
	}
	return out
}
