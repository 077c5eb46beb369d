// ABOUTME: ContentClassifier labels documents and chunks with heuristic cues
// ABOUTME: Keyword and structural rules; ties fall back to the general category
package core

import (
	"regexp"
	"strings"

	"github.com/guidewell/policyrag/internal/models"
)

var (
	numberedStepPattern = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[a-z][.)])\s+`)
	bulletPattern       = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	headingPattern      = regexp.MustCompile(`(?m)^[A-Z][^\n]{0,80}:$`)
)

// imperativeVerbs open procedure steps ("Submit the form", "Review the file").
var imperativeVerbs = []string{
	"submit", "complete", "review", "verify", "calculate", "obtain",
	"contact", "document", "apply", "select", "enter", "confirm",
	"upload", "order", "request", "collect", "determine", "ensure",
}

var definitionCues = []string{
	"is defined as", "means", "refers to", "is a term", "definition of",
	"known as", "defined by",
}

var requirementCues = []string{
	"must", "shall", "required", "requirement", "is not permitted",
	"is prohibited", "minimum", "maximum", "at least", "no more than",
	"eligible", "eligibility", "may not exceed",
}

var procedureCues = []string{
	"step", "steps", "procedure", "process", "follow these", "how to",
	"instructions", "workflow",
}

// Classifier applies deterministic keyword and structural rules. Well-formed
// text never fails classification; unclassifiable text gets the default
// category.
type Classifier struct{}

// NewClassifier creates a new Classifier instance
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyDocument labels a whole document. The strongest cue family wins;
// ties default to GeneralInfo.
func (c *Classifier) ClassifyDocument(doc models.Document) models.ContentType {
	lower := strings.ToLower(doc.Content + " " + doc.Title)

	procedureScore := countCues(lower, procedureCues) +
		len(numberedStepPattern.FindAllString(doc.Content, -1)) +
		countImperativeLines(doc.Content)
	definitionScore := countCues(lower, definitionCues) * 2

	if procedureScore > definitionScore && procedureScore > 0 {
		return models.ContentTypeProcedure
	}
	if definitionScore > procedureScore && definitionScore > 0 {
		return models.ContentTypeDefinition
	}
	return models.ContentTypeGeneralInfo
}

// ClassifySection labels a chunk of text. surroundingContext (neighboring
// text, may be empty) weighs in at half strength so a bare list fragment
// inherits its section's character. Ties default to Information.
func (c *Classifier) ClassifySection(text, surroundingContext string) models.SectionType {
	scores := sectionScores(text)
	if surroundingContext != "" {
		contextScores := sectionScores(surroundingContext)
		for section, score := range contextScores {
			scores[section] += score / 2
		}
	}

	best := models.SectionInformation
	bestScore := 0
	// Fixed evaluation order keeps ties deterministic.
	for _, section := range []models.SectionType{models.SectionRequirement, models.SectionProcedure, models.SectionDefinition} {
		if scores[section] > bestScore {
			best = section
			bestScore = scores[section]
		}
	}
	return best
}

func sectionScores(text string) map[models.SectionType]int {
	lower := strings.ToLower(text)
	return map[models.SectionType]int{
		models.SectionRequirement: countCues(lower, requirementCues),
		models.SectionProcedure: countCues(lower, procedureCues) +
			len(numberedStepPattern.FindAllString(text, -1)) +
			countImperativeLines(text),
		models.SectionDefinition: countCues(lower, definitionCues) * 2,
	}
}

// SectionMarkers returns offsets of structural section starts (headings and
// list items) used by the chunker as boundary candidates.
func (c *Classifier) SectionMarkers(content string) []int {
	var offsets []int
	for _, loc := range headingPattern.FindAllStringIndex(content, -1) {
		offsets = append(offsets, loc[0])
	}
	for _, loc := range bulletPattern.FindAllStringIndex(content, -1) {
		offsets = append(offsets, loc[0])
	}
	for _, loc := range numberedStepPattern.FindAllStringIndex(content, -1) {
		offsets = append(offsets, loc[0])
	}
	return offsets
}

func countCues(lower string, cues []string) int {
	count := 0
	for _, cue := range cues {
		count += strings.Count(lower, cue)
	}
	return count
}

// countImperativeLines counts lines opening with an imperative verb.
func countImperativeLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.ToLower(strings.TrimLeft(line, " \t-*•0123456789.)"))
		for _, verb := range imperativeVerbs {
			if strings.HasPrefix(trimmed, verb+" ") {
				count++
				break
			}
		}
	}
	return count
}
