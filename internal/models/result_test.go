// ABOUTME: Tests for retrieval result ranking
// ABOUTME: Verifies confidence, similarity, and path tie-break ordering

package models

import "testing"

func TestSortResults_Ordering(t *testing.T) {
	results := []ScoredResult{
		{ComponentPath: "x2_x1", RawSimilarity: 0.9, Confidence: 0.5},
		{ComponentPath: "x1_x1", RawSimilarity: 0.7, Confidence: 0.8},
		{ComponentPath: "x3_x1", RawSimilarity: 0.8, Confidence: 0.8},
	}

	SortResults(results)

	// Highest confidence first; within equal confidence, higher similarity wins.
	if results[0].ComponentPath != "x3_x1" {
		t.Errorf("results[0] = %s, want x3_x1", results[0].ComponentPath)
	}
	if results[1].ComponentPath != "x1_x1" {
		t.Errorf("results[1] = %s, want x1_x1", results[1].ComponentPath)
	}
	if results[2].ComponentPath != "x2_x1" {
		t.Errorf("results[2] = %s, want x2_x1", results[2].ComponentPath)
	}
}

func TestSortResults_PathTieBreak(t *testing.T) {
	results := []ScoredResult{
		{ComponentPath: "x9_x2", RawSimilarity: 0.6, Confidence: 0.6},
		{ComponentPath: "x1_x2", RawSimilarity: 0.6, Confidence: 0.6},
		{ComponentPath: "x5_x2", RawSimilarity: 0.6, Confidence: 0.6},
	}

	SortResults(results)

	want := []string{"x1_x2", "x5_x2", "x9_x2"}
	for i, w := range want {
		if results[i].ComponentPath != w {
			t.Errorf("results[%d] = %s, want %s", i, results[i].ComponentPath, w)
		}
	}
}

func TestSortResults_Deterministic(t *testing.T) {
	build := func() []ScoredResult {
		return []ScoredResult{
			{ComponentPath: "x2", RawSimilarity: 0.8, Confidence: 0.9},
			{ComponentPath: "x1", RawSimilarity: 0.8, Confidence: 0.9},
			{ComponentPath: "x3", RawSimilarity: 0.5, Confidence: 0.7},
		}
	}

	a := build()
	b := build()
	SortResults(a)
	SortResults(b)

	for i := range a {
		if a[i].ComponentPath != b[i].ComponentPath {
			t.Fatalf("sort not deterministic at index %d: %s vs %s", i, a[i].ComponentPath, b[i].ComponentPath)
		}
	}
}
