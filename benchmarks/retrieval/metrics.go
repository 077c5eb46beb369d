// ABOUTME: Deterministic retrieval-quality metrics for benchmark cases
// ABOUTME: Context recall and precision against ground-truth document sets

package retrieval

import (
	"fmt"

	"github.com/guidewell/policyrag/internal/models"
)

// MetricsCalculator computes retrieval-quality scores for benchmark cases
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// ContextRecall computes the fraction of expected documents that appear in
// the results (0.0-1.0), with an explanation of any gap.
func (m *MetricsCalculator) ContextRecall(results []models.ScoredResult, expectedRootIDs []string) (float64, string) {
	if len(expectedRootIDs) == 0 {
		return 1.0, "No expected documents - trivially complete"
	}

	retrieved := make(map[string]bool, len(results))
	for _, res := range results {
		retrieved[res.RootID] = true
	}

	missing := []string{}
	for _, rootID := range expectedRootIDs {
		if !retrieved[rootID] {
			missing = append(missing, rootID)
		}
	}

	if len(missing) == 0 {
		return 1.0, "All expected documents retrieved"
	}

	found := len(expectedRootIDs) - len(missing)
	score := float64(found) / float64(len(expectedRootIDs))
	return score, fmt.Sprintf("Missing expected documents: %v", missing)
}

// ContextPrecision computes the fraction of results drawn from expected
// documents (0.0-1.0). A result outside the ground-truth set is noise.
func (m *MetricsCalculator) ContextPrecision(results []models.ScoredResult, expectedRootIDs []string) (float64, string) {
	if len(results) == 0 {
		return 0.0, "No results retrieved"
	}

	expected := make(map[string]bool, len(expectedRootIDs))
	for _, rootID := range expectedRootIDs {
		expected[rootID] = true
	}

	relevant := 0
	noise := []string{}
	for _, res := range results {
		if expected[res.RootID] {
			relevant++
		} else {
			noise = append(noise, res.RootID)
		}
	}

	score := float64(relevant) / float64(len(results))
	if len(noise) == 0 {
		return score, "All results from expected documents"
	}
	return score, fmt.Sprintf("Results from unexpected documents: %v", noise)
}

// ProductCoverage reports whether every expected product appears among the
// results of a comparison query.
func (m *MetricsCalculator) ProductCoverage(results []models.ScoredResult, expectedProducts []string) (float64, string) {
	if len(expectedProducts) == 0 {
		return 1.0, "No expected products - trivially complete"
	}

	seen := make(map[string]bool)
	for _, res := range results {
		for _, product := range res.Products {
			seen[product] = true
		}
	}

	missing := []string{}
	for _, product := range expectedProducts {
		if !seen[product] {
			missing = append(missing, product)
		}
	}

	if len(missing) == 0 {
		return 1.0, "All expected products represented"
	}

	found := len(expectedProducts) - len(missing)
	return float64(found) / float64(len(expectedProducts)), fmt.Sprintf("Products missing from results: %v", missing)
}
