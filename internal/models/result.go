// ABOUTME: RetrievalResult types and deterministic ranking
// ABOUTME: Ranked by confidence, then raw similarity, then component path
package models

import "sort"

// ResultKind distinguishes summary-level from chunk-level results.
type ResultKind string

const (
	ResultSummary ResultKind = "summary"
	ResultChunk   ResultKind = "chunk"
)

// Citation locates a result for the reader.
type Citation struct {
	ComponentPath string `json:"component_path"`
	Title         string `json:"title"`
	Section       string `json:"section,omitempty"`
}

// ScoredResult is one ranked retrieval hit.
type ScoredResult struct {
	Kind          ResultKind  `json:"kind"`
	RootID        string      `json:"root_id"`
	Content       string      `json:"content"`
	ComponentPath string      `json:"component_path"`
	SectionType   SectionType `json:"section_type,omitempty"`
	Products      []string    `json:"products,omitempty"`
	RawSimilarity float64     `json:"raw_similarity"`
	Confidence    float64     `json:"confidence"`
	Citation      Citation    `json:"citation"`
	PairKey       string      `json:"pair_key,omitempty"`
}

// ComparisonGroup pairs corresponding results across products for a
// comparison query. Key is contentType plus the category-level path prefix.
type ComparisonGroup struct {
	Key     string         `json:"key"`
	Results []ScoredResult `json:"results"`
}

// RetrievalResult is the ordered outcome of one retrieval.
type RetrievalResult struct {
	Results  []ScoredResult    `json:"results"`
	Groups   []ComparisonGroup `json:"groups,omitempty"`
	Strategy string            `json:"strategy"`
	Degraded bool              `json:"degraded,omitempty"`
}

// SortResults orders results by confidence descending, breaking ties by raw
// similarity descending and then component path lexicographic order. The
// final tie-break keeps ranking reproducible.
func SortResults(results []ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		if results[i].RawSimilarity != results[j].RawSimilarity {
			return results[i].RawSimilarity > results[j].RawSimilarity
		}
		return results[i].ComponentPath < results[j].ComponentPath
	})
}
