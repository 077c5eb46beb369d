// ABOUTME: Shared service wiring for CLI commands
// ABOUTME: Builds the store, LLM client, ingestor, and retriever from config
package commands

import (
	"context"
	"fmt"

	"github.com/guidewell/policyrag/internal/config"
	"github.com/guidewell/policyrag/internal/core"
	"github.com/guidewell/policyrag/internal/llm"
	"github.com/guidewell/policyrag/internal/storage"
	"github.com/guidewell/policyrag/internal/storage/memory"
	"github.com/guidewell/policyrag/internal/storage/qdrant"
)

// services bundles everything a command needs to run the pipelines.
type services struct {
	cfg       *config.Config
	store     storage.DualStore
	llmClient *llm.Client
	ingestor  *core.Ingestor
	retriever *core.Retriever
}

// buildServices wires the full stack from environment configuration and
// ensures the vector collections exist.
func buildServices(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	llmClient, err := llm.NewClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing OpenAI client: %w", err)
	}

	// POLICYRAG_STORE=memory keeps the index in-process, which is enough for
	// an mcp session that ingests and queries without a Qdrant instance.
	var store storage.DualStore
	if cfg.StoreBackend == config.StoreMemory {
		store = memory.NewStore()
	} else {
		store = qdrant.NewStore(qdrant.Config{
			URL:               cfg.QdrantURL,
			APIKey:            cfg.QdrantAPIKey,
			SummaryCollection: cfg.SummaryCollection,
			ChunkCollection:   cfg.ChunkCollection,
			Timeout:           cfg.Timeout,
		})
	}
	if err := store.Init(ctx, cfg.VectorDimension); err != nil {
		return nil, fmt.Errorf("initializing vector collections: %w", err)
	}

	ingestor, err := core.NewIngestor(store, llmClient, llmClient, core.IngestorConfig{
		Workers:   cfg.IngestWorkers,
		EmbedRate: cfg.EmbedRateLimit,
		Chunker: core.ChunkerConfig{
			Overlap:   cfg.ChunkOverlap,
			MinSize:   cfg.ChunkMinSize,
			MaxSize:   cfg.ChunkMaxSize,
			MaxTokens: cfg.ChunkMaxTokens,
		},
		SummaryEmbedMode: cfg.SummaryEmbedding,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing ingestor: %w", err)
	}

	vocab, err := cfg.ProductVocabulary()
	if err != nil {
		return nil, err
	}
	retriever := core.NewRetriever(store, llmClient,
		core.NewQueryClassifier(vocab),
		core.NewScorer(cfg.TopicBoost, cfg.ProductBoost),
		core.RetrieverConfig{
			NumCandidates: cfg.NumCandidates,
			SummaryLimit:  cfg.SummaryLimit,
			DetailedLimit: cfg.DetailedLimit,
			QueryTimeout:  cfg.QueryTimeout,
		})

	return &services{
		cfg:       cfg,
		store:     store,
		llmClient: llmClient,
		ingestor:  ingestor,
		retriever: retriever,
	}, nil
}
