// ABOUTME: ConfidenceScorer blends raw similarity with topic and product boosts
// ABOUTME: Monotonic in every input; assembles human-readable citations
package core

import (
	"github.com/guidewell/policyrag/internal/models"
)

// Scorer combines raw vector similarity with match boosts. Both boosts are
// fixed increments so the score is monotonic non-decreasing in each flag.
type Scorer struct {
	topicBoost   float64
	productBoost float64
}

// NewScorer creates a Scorer with the given boost increments.
func NewScorer(topicBoost, productBoost float64) *Scorer {
	return &Scorer{topicBoost: topicBoost, productBoost: productBoost}
}

// Score returns the blended confidence, clamped to [0, 1].
func (s *Scorer) Score(rawSimilarity float64, topicMatch, productMatch bool) float64 {
	confidence := clamp01(rawSimilarity)
	if topicMatch {
		confidence += s.topicBoost
	}
	if productMatch {
		confidence += s.productBoost
	}
	return clamp01(confidence)
}

// Citation builds the locator attached to each result.
func (s *Scorer) Citation(componentPath, title string, sectionType models.SectionType) models.Citation {
	return models.Citation{
		ComponentPath: componentPath,
		Title:         title,
		Section:       sectionLabel(sectionType),
	}
}

func sectionLabel(sectionType models.SectionType) string {
	switch sectionType {
	case models.SectionRequirement:
		return "Requirements"
	case models.SectionProcedure:
		return "Procedures"
	case models.SectionDefinition:
		return "Definitions"
	case models.SectionInformation:
		return "General Information"
	default:
		return ""
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
