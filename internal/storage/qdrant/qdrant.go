// ABOUTME: Qdrant-backed DualStore over the REST API
// ABOUTME: Two cosine collections with payload indexes for product and section filters
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/guidewell/policyrag/internal/models"
	"github.com/guidewell/policyrag/internal/storage"
)

// Store is a minimal REST client to Qdrant managing the summary and chunk
// collections. It assumes cosine distance and creates collections if missing.
type Store struct {
	url               string
	apiKey            string
	summaryCollection string
	chunkCollection   string
	dimension         int
	client            *http.Client
}

type Config struct {
	URL               string
	APIKey            string
	SummaryCollection string
	ChunkCollection   string
	Timeout           time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:               cfg.URL,
		apiKey:            cfg.APIKey,
		summaryCollection: cfg.SummaryCollection,
		chunkCollection:   cfg.ChunkCollection,
		client:            &http.Client{Timeout: timeout},
	}
}

// Init creates both collections and their payload indexes if missing.
func (s *Store) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension

	vectors := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	for _, collection := range []string{s.summaryCollection, s.chunkCollection} {
		if err := s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, collection), vectors); err != nil {
			return fmt.Errorf("creating collection %s: %w", collection, err)
		}
	}

	indexes := map[string][]string{
		s.summaryCollection: {"root_id", "products"},
		s.chunkCollection:   {"root_id", "products", "section_type"},
	}
	for collection, fields := range indexes {
		for _, field := range fields {
			body := map[string]any{
				"field_name":   field,
				"field_schema": "keyword",
			}
			if err := s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/index?wait=true", s.url, collection), body); err != nil {
				return fmt.Errorf("indexing %s.%s: %w", collection, field, err)
			}
		}
	}
	return nil
}

func (s *Store) UpsertSummary(ctx context.Context, rec models.SummaryRecord) error {
	if rec.RootID == "" {
		return errors.New("summary record missing root_id")
	}
	point := map[string]any{
		"id":     pointID("summary", rec.RootID),
		"vector": rec.MainSummary.Embedding,
		"payload": map[string]any{
			"root_id":  rec.RootID,
			"products": rec.Products,
			"record":   rec,
		},
	}
	body := map[string]any{"points": []any{point}}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.summaryCollection), body)
}

func (s *Store) UpsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	points := make([]any, len(chunks))
	for i, c := range chunks {
		if c.RootID == "" {
			return errors.New("chunk missing root_id")
		}
		points[i] = map[string]any{
			"id":     pointID("chunk", c.ChunkID),
			"vector": c.Embedding,
			"payload": map[string]any{
				"root_id":      c.RootID,
				"products":     c.Metadata.Products,
				"section_type": string(c.Metadata.SectionType),
				"record":       c,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.chunkCollection), body)
}

func (s *Store) DeleteDocument(ctx context.Context, rootID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []any{
				map[string]any{"key": "root_id", "match": map[string]any{"value": rootID}},
			},
		},
	}
	for _, collection := range []string{s.summaryCollection, s.chunkCollection} {
		url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, collection)
		if err := s.postJSON(ctx, url, body, nil); err != nil {
			return fmt.Errorf("deleting document %s from %s: %w", rootID, collection, err)
		}
	}
	return nil
}

func (s *Store) SearchSummaries(ctx context.Context, vector []float64, filter storage.Filter, numCandidates, limit int) ([]storage.SummaryHit, error) {
	var resp searchResponse
	if err := s.search(ctx, s.summaryCollection, vector, filter, numCandidates, limit, &resp); err != nil {
		return nil, err
	}

	hits := make([]storage.SummaryHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		var rec models.SummaryRecord
		if err := json.Unmarshal(r.Payload.Record, &rec); err != nil {
			continue
		}
		hits = append(hits, storage.SummaryHit{Record: rec, Similarity: r.Score})
	}
	return hits, nil
}

func (s *Store) SearchChunks(ctx context.Context, vector []float64, filter storage.Filter, numCandidates, limit int) ([]storage.ChunkHit, error) {
	var resp searchResponse
	if err := s.search(ctx, s.chunkCollection, vector, filter, numCandidates, limit, &resp); err != nil {
		return nil, err
	}

	hits := make([]storage.ChunkHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		var c models.Chunk
		if err := json.Unmarshal(r.Payload.Record, &c); err != nil {
			continue
		}
		hits = append(hits, storage.ChunkHit{Chunk: c, Similarity: r.Score})
	}
	return hits, nil
}

type searchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload struct {
			Record json.RawMessage `json:"record"`
		} `json:"payload"`
	} `json:"result"`
}

func (s *Store) search(ctx context.Context, collection string, vector []float64, filter storage.Filter, numCandidates, limit int, out *searchResponse) error {
	if limit <= 0 {
		limit = 10
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if numCandidates > 0 {
		req["params"] = map[string]any{"hnsw_ef": numCandidates}
	}
	if clauses := filterClauses(filter); len(clauses) > 0 {
		req["filter"] = map[string]any{"must": clauses}
	}
	return s.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", s.url, collection), req, out)
}

// filterClauses renders a storage.Filter as Qdrant must-conditions, so the
// constraint is applied before ranking rather than post-hoc.
func filterClauses(f storage.Filter) []any {
	var clauses []any
	if len(f.Products) > 0 {
		clauses = append(clauses, map[string]any{
			"key":   "products",
			"match": map[string]any{"any": f.Products},
		})
	}
	if f.SectionType != "" {
		clauses = append(clauses, map[string]any{
			"key":   "section_type",
			"match": map[string]any{"value": string(f.SectionType)},
		})
	}
	if len(f.RootIDs) > 0 {
		clauses = append(clauses, map[string]any{
			"key":   "root_id",
			"match": map[string]any{"any": f.RootIDs},
		})
	}
	return clauses
}

// pointID derives a stable UUID from the record identity so re-ingesting a
// document overwrites its previous points.
func pointID(kind, id string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+id)).String()
}

func (s *Store) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
