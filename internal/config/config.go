// ABOUTME: Centralized configuration for the policy retrieval system
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// SummaryEmbedding modes: what text backs the summary collection's combined
// embedding field.
const (
	SummaryEmbedMain     = "main"
	SummaryEmbedCombined = "combined"
)

// Store backends selectable via POLICYRAG_STORE.
const (
	StoreQdrant = "qdrant"
	StoreMemory = "memory"
)

// Config holds all configuration for the policy retrieval system
type Config struct {
	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Storage settings
	StoreBackend      string
	QdrantURL         string
	QdrantAPIKey      string
	SummaryCollection string
	ChunkCollection   string

	// Chunking settings
	ChunkOverlap   int
	ChunkMinSize   int
	ChunkMaxSize   int
	ChunkMaxTokens int

	// Retrieval settings
	NumCandidates    int
	SummaryLimit     int
	DetailedLimit    int
	TopicBoost       float64
	ProductBoost     float64
	QueryTimeout     time.Duration
	SummaryEmbedding string

	// Ingestion settings
	IngestWorkers  int
	EmbedRateLimit float64 // embedding calls per second across all workers

	// Embedding settings
	VectorDimension int

	// Product vocabulary override, JSON file of code -> aliases
	ProductVocabFile string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		ChatModel:         getEnv("POLICYRAG_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:    getEnv("POLICYRAG_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:           getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:        getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		StoreBackend:      getEnv("POLICYRAG_STORE", StoreQdrant),
		QdrantURL:         getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		SummaryCollection: getEnv("POLICYRAG_SUMMARY_COLLECTION", "policy_summaries"),
		ChunkCollection:   getEnv("POLICYRAG_CHUNK_COLLECTION", "policy_chunks"),
		ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", 50),
		ChunkMinSize:      getEnvInt("CHUNK_MIN_SIZE", 100),
		ChunkMaxSize:      getEnvInt("CHUNK_MAX_SIZE", 1500),
		ChunkMaxTokens:    getEnvInt("CHUNK_MAX_TOKENS", 1500),
		NumCandidates:     getEnvInt("RETRIEVAL_NUM_CANDIDATES", 50),
		SummaryLimit:      getEnvInt("RETRIEVAL_SUMMARY_LIMIT", 1),
		DetailedLimit:     getEnvInt("RETRIEVAL_DETAILED_LIMIT", 10),
		TopicBoost:        getEnvFloat("CONFIDENCE_TOPIC_BOOST", 0.05),
		ProductBoost:      getEnvFloat("CONFIDENCE_PRODUCT_BOOST", 0.10),
		QueryTimeout:      getEnvDuration("QUERY_TIMEOUT", 15*time.Second),
		SummaryEmbedding:  getEnv("SUMMARY_EMBEDDING", SummaryEmbedMain),
		IngestWorkers:     getEnvInt("INGEST_WORKERS", 4),
		EmbedRateLimit:    getEnvFloat("EMBED_RATE_LIMIT", 5),
		VectorDimension:   getEnvInt("VECTOR_DIMENSION", 1536),
		ProductVocabFile:  os.Getenv("PRODUCT_VOCAB_FILE"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must be >= 0, got %d", c.ChunkOverlap)
	}
	if c.ChunkMinSize <= 0 {
		return fmt.Errorf("CHUNK_MIN_SIZE must be positive, got %d", c.ChunkMinSize)
	}
	if c.ChunkMaxSize <= c.ChunkMinSize {
		return fmt.Errorf("CHUNK_MAX_SIZE (%d) must exceed CHUNK_MIN_SIZE (%d)", c.ChunkMaxSize, c.ChunkMinSize)
	}
	if c.ChunkOverlap >= c.ChunkMinSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be below CHUNK_MIN_SIZE (%d)", c.ChunkOverlap, c.ChunkMinSize)
	}
	if c.ChunkMaxTokens <= 0 {
		return fmt.Errorf("CHUNK_MAX_TOKENS must be positive, got %d", c.ChunkMaxTokens)
	}
	if c.TopicBoost < 0 || c.TopicBoost > 1 {
		return fmt.Errorf("CONFIDENCE_TOPIC_BOOST must be 0-1, got %f", c.TopicBoost)
	}
	if c.ProductBoost < 0 || c.ProductBoost > 1 {
		return fmt.Errorf("CONFIDENCE_PRODUCT_BOOST must be 0-1, got %f", c.ProductBoost)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.NumCandidates <= 0 || c.SummaryLimit <= 0 || c.DetailedLimit <= 0 {
		return fmt.Errorf("retrieval limits must be positive (candidates=%d, summary=%d, detailed=%d)",
			c.NumCandidates, c.SummaryLimit, c.DetailedLimit)
	}
	if c.SummaryEmbedding != SummaryEmbedMain && c.SummaryEmbedding != SummaryEmbedCombined {
		return fmt.Errorf("SUMMARY_EMBEDDING must be %q or %q, got %q", SummaryEmbedMain, SummaryEmbedCombined, c.SummaryEmbedding)
	}
	if c.IngestWorkers <= 0 {
		return fmt.Errorf("INGEST_WORKERS must be positive, got %d", c.IngestWorkers)
	}
	if c.EmbedRateLimit <= 0 {
		return fmt.Errorf("EMBED_RATE_LIMIT must be positive, got %f", c.EmbedRateLimit)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.StoreBackend != StoreQdrant && c.StoreBackend != StoreMemory {
		return fmt.Errorf("POLICYRAG_STORE must be %q or %q, got %q", StoreQdrant, StoreMemory, c.StoreBackend)
	}
	return nil
}

// ProductVocabulary returns the product code -> aliases map. When
// PRODUCT_VOCAB_FILE is set it is loaded from that JSON file, otherwise the
// built-in mortgage product set applies.
func (c *Config) ProductVocabulary() (map[string][]string, error) {
	if c.ProductVocabFile == "" {
		return defaultVocabulary(), nil
	}

	data, err := os.ReadFile(c.ProductVocabFile)
	if err != nil {
		return nil, fmt.Errorf("reading product vocabulary: %w", err)
	}

	vocab := make(map[string][]string)
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("parsing product vocabulary: %w", err)
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("product vocabulary file %s is empty", c.ProductVocabFile)
	}
	return vocab, nil
}

func defaultVocabulary() map[string][]string {
	return map[string][]string{
		"VA":           {"va", "va loan", "va loans", "veterans affairs"},
		"FHA":          {"fha", "fha loan", "fha loans", "federal housing administration"},
		"USDA":         {"usda", "usda loan", "rural development"},
		"CONV":         {"conventional", "conventional loan", "conforming"},
		"JUMBO":        {"jumbo", "jumbo loan", "non-conforming"},
		"HELOC":        {"heloc", "home equity line", "home equity line of credit"},
		"REVERSE":      {"reverse mortgage", "hecm"},
		"CONSTRUCTION": {"construction loan", "construction-to-permanent"},
	}
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
