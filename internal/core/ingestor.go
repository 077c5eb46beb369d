// ABOUTME: Ingestor runs the document pipeline: clean, classify, chunk,
// ABOUTME: summarize, embed, and commit to both collections with rollback
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/guidewell/policyrag/internal/models"
	"github.com/guidewell/policyrag/internal/storage"
)

// IngestorConfig sizes the ingestion pipeline.
type IngestorConfig struct {
	// Workers is the number of documents processed concurrently.
	Workers int
	// EmbedRate caps embedding calls per second across all workers.
	EmbedRate float64
	// Chunker bounds chunk geometry.
	Chunker ChunkerConfig
	// SummaryEmbedMode selects the main summary embedding text
	// (config.SummaryEmbedMain or SummaryEmbedCombined).
	SummaryEmbedMode string
}

// DefaultIngestorConfig returns the reference configuration.
func DefaultIngestorConfig() IngestorConfig {
	return IngestorConfig{Workers: 4, EmbedRate: 5, Chunker: DefaultChunkerConfig()}
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Documents     int                        `json:"documents"`
	Failed        int                        `json:"failed"`
	Chunks        int                        `json:"chunks"`
	BySection     map[models.SectionType]int `json:"by_section"`
	MeanChunkSize float64                    `json:"mean_chunk_size"`
	Duration      time.Duration              `json:"duration"`
}

// Ingestor processes documents through the full pipeline and commits them to
// the dual store. Documents are independent: one failure never blocks the
// rest of the batch.
type Ingestor struct {
	store      storage.DualStore
	cleaner    *ContentCleaner
	classifier *Classifier
	chunker    *Chunker
	summarizer *Summarizer
	embedder   Embedder
	workers    int
}

// NewIngestor builds the pipeline. All embedding traffic, chunk and summary
// alike, flows through one shared rate limiter.
func NewIngestor(store storage.DualStore, generator Generator, embedder Embedder, cfg IngestorConfig) (*Ingestor, error) {
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.EmbedRate <= 0 {
		return nil, fmt.Errorf("embed rate must be positive, got %f", cfg.EmbedRate)
	}

	classifier := NewClassifier()
	chunker, err := NewChunker(classifier, cfg.Chunker)
	if err != nil {
		return nil, err
	}

	limited := &rateLimitedEmbedder{
		inner:   embedder,
		limiter: rate.NewLimiter(rate.Limit(cfg.EmbedRate), 1),
	}

	return &Ingestor{
		store:      store,
		cleaner:    NewContentCleaner(),
		classifier: classifier,
		chunker:    chunker,
		summarizer: NewSummarizer(generator, limited, cfg.SummaryEmbedMode),
		embedder:   limited,
		workers:    cfg.Workers,
	}, nil
}

// IngestAll processes a batch with the configured worker pool. Per-document
// failures are logged and counted; the returned error joins them.
func (ing *Ingestor) IngestAll(ctx context.Context, docs []models.Document) (IngestStats, error) {
	start := time.Now()
	stats := IngestStats{BySection: make(map[models.SectionType]int)}

	jobs := make(chan models.Document)
	var mu sync.Mutex
	var errs []error
	totalSize := 0

	var wg sync.WaitGroup
	for i := 0; i < ing.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				chunks, err := ing.ingestOne(ctx, doc)

				mu.Lock()
				if err != nil {
					log.Printf("[Ingestor] document %s failed: %v", doc.RootID, err)
					stats.Failed++
					errs = append(errs, fmt.Errorf("document %s: %w", doc.RootID, err))
				} else {
					stats.Documents++
					stats.Chunks += len(chunks)
					for _, chunk := range chunks {
						stats.BySection[chunk.Metadata.SectionType]++
						totalSize += chunk.End - chunk.Start
					}
				}
				mu.Unlock()
			}
		}()
	}

	for _, doc := range docs {
		select {
		case jobs <- doc:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if stats.Chunks > 0 {
		stats.MeanChunkSize = float64(totalSize) / float64(stats.Chunks)
	}
	stats.Duration = time.Since(start)

	log.Printf("[Ingestor] batch done: %d documents, %d failed, %d chunks in %s",
		stats.Documents, stats.Failed, stats.Chunks, stats.Duration.Round(time.Millisecond))

	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}
	return stats, errors.Join(errs...)
}

// ingestOne runs the pipeline for a single document and returns its committed
// chunks.
func (ing *Ingestor) ingestOne(ctx context.Context, doc models.Document) ([]models.Chunk, error) {
	doc.Content = ing.cleaner.Clean(doc.Content)
	if doc.ContentType == "" {
		doc.ContentType = ing.classifier.ClassifyDocument(doc)
	}
	if doc.TopicCategory == "" {
		doc.TopicCategory = detectTopic(normalizeQuery(doc.Title + " " + doc.Content))
	}

	chunks, err := ing.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}
	if len(chunks) == 0 {
		// An emptied document still supersedes its previous version.
		log.Printf("[Ingestor] document %s has no content, removing any previous version", doc.RootID)
		return nil, ing.store.DeleteDocument(ctx, doc.RootID)
	}

	record, err := ing.summarizer.Summarize(ctx, doc, chunks)
	if err != nil {
		return nil, fmt.Errorf("summarizing: %w", err)
	}

	for i := range chunks {
		chunks[i].Metadata.TopicCategory = doc.TopicCategory
		chunks[i].Context = models.ChunkContext{
			ParentSectionSummary: record.SectionSummaries[chunks[i].Metadata.SectionType].Text,
			ProductContext:       productContext(doc),
		}

		text := ContextualChunkText(doc, chunks[i].Context.ParentSectionSummary, chunks[i].Text)
		vector, err := ing.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %s: %w", chunks[i].ChunkID, err)
		}
		chunks[i].Embedding = vector
	}

	if err := ing.commit(ctx, doc.RootID, record, chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// commit supersedes any previous version, then writes chunks and summary.
// A failure between the two writes rolls the document back so the collections
// never disagree about which documents exist.
func (ing *Ingestor) commit(ctx context.Context, rootID string, record models.SummaryRecord, chunks []models.Chunk) error {
	if err := ing.store.DeleteDocument(ctx, rootID); err != nil {
		return fmt.Errorf("superseding previous version: %w", err)
	}

	if err := ing.store.UpsertChunks(ctx, chunks); err != nil {
		return &models.PartialCommitError{RootID: rootID, Stage: "chunks", Err: err}
	}
	if err := ing.store.UpsertSummary(ctx, record); err != nil {
		if rbErr := ing.store.DeleteDocument(ctx, rootID); rbErr != nil {
			log.Printf("[Ingestor] rollback of %s failed, collections may disagree: %v", rootID, rbErr)
		}
		return &models.PartialCommitError{RootID: rootID, Stage: "summary", Err: err}
	}
	return nil
}

// productContext carries the per-product framing attached to every chunk for
// answer generation.
func productContext(doc models.Document) map[string]string {
	if len(doc.Products) == 0 {
		return nil
	}
	out := make(map[string]string, len(doc.Products))
	for _, product := range doc.Products {
		out[product] = fmt.Sprintf("%s guidance from %q", product, doc.Title)
	}
	return out
}

// rateLimitedEmbedder throttles embedding calls across all pipeline workers.
type rateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

func (e *rateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.inner.Embed(ctx, text)
}
