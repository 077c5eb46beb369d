// ABOUTME: HierarchicalSummarizer builds the per-document summary record
// ABOUTME: Section-type group summaries roll up into one main summary, all embedded
package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/guidewell/policyrag/internal/config"
	"github.com/guidewell/policyrag/internal/models"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator condenses related texts into one summary.
type Generator interface {
	Summarize(ctx context.Context, texts []string) (string, error)
}

// sectionOrder fixes the processing order of section-type groups so summary
// records come out the same on every run over the same chunks.
var sectionOrder = []models.SectionType{
	models.SectionRequirement,
	models.SectionProcedure,
	models.SectionDefinition,
	models.SectionInformation,
}

// Summarizer produces the SummaryRecord for a document from its chunks.
// A failed section summary is logged and skipped; a missing main summary is
// fatal because the summary collection would otherwise be unsearchable for
// this document.
type Summarizer struct {
	generator Generator
	embedder  Embedder
	embedMode string
}

// NewSummarizer creates a Summarizer. embedMode selects what text backs the
// main summary embedding (config.SummaryEmbedMain or SummaryEmbedCombined).
func NewSummarizer(generator Generator, embedder Embedder, embedMode string) *Summarizer {
	if embedMode == "" {
		embedMode = config.SummaryEmbedMain
	}
	return &Summarizer{generator: generator, embedder: embedder, embedMode: embedMode}
}

// Summarize builds the summary record: one summary per section type present
// among the chunks, rolled up into a main summary, then embeds everything.
func (s *Summarizer) Summarize(ctx context.Context, doc models.Document, chunks []models.Chunk) (models.SummaryRecord, error) {
	record := models.SummaryRecord{
		RootID:           doc.RootID,
		PageTitle:        doc.Title,
		ComponentPath:    doc.Path.String(),
		ContentHierarchy: models.BuildHierarchy(doc.Path),
		Products:         doc.Products,
		TopicCategory:    doc.TopicCategory,
	}

	groups := groupBySection(doc, chunks)

	sections := make(map[models.SectionType]models.SummaryEntry)
	for _, sectionType := range sectionOrder {
		texts, ok := groups[sectionType]
		if !ok {
			continue
		}
		text, err := s.generator.Summarize(ctx, texts)
		if err != nil {
			log.Printf("[Summarizer] section %s of %s failed, skipping: %v", sectionType, doc.RootID, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Printf("[Summarizer] section %s of %s came back empty, skipping", sectionType, doc.RootID)
			continue
		}
		sections[sectionType] = models.SummaryEntry{Text: text}
	}
	if len(sections) > 0 {
		record.SectionSummaries = sections
	}

	mainText, err := s.mainSummary(ctx, doc, chunks, sections)
	if err != nil {
		return models.SummaryRecord{}, err
	}
	record.MainSummary = models.SummaryEntry{Text: mainText}

	if err := s.embedRecord(ctx, doc, &record); err != nil {
		return models.SummaryRecord{}, err
	}
	return record, nil
}

// mainSummary rolls the section summaries up into one document summary,
// falling back to the raw chunk texts when no section summary survived.
func (s *Summarizer) mainSummary(ctx context.Context, doc models.Document, chunks []models.Chunk, sections map[models.SectionType]models.SummaryEntry) (string, error) {
	var inputs []string
	for _, sectionType := range sectionOrder {
		if entry, ok := sections[sectionType]; ok {
			inputs = append(inputs, fmt.Sprintf("%s: %s", sectionLabel(sectionType), entry.Text))
		}
	}
	if len(inputs) == 0 {
		for _, chunk := range chunks {
			inputs = append(inputs, chunk.PrimaryText(doc.Content))
		}
	}

	text, err := s.generator.Summarize(ctx, inputs)
	if err != nil {
		return "", fmt.Errorf("main summary for %s: %w", doc.RootID, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &models.IncompleteSummaryError{RootID: doc.RootID, Section: "main"}
	}
	return text, nil
}

// embedRecord embeds the main and section summaries concurrently. Any
// embedding failure fails the record; a summary without a vector would be
// invisible to search.
func (s *Summarizer) embedRecord(ctx context.Context, doc models.Document, record *models.SummaryRecord) error {
	type job struct {
		text  string
		apply func([]float64)
	}

	jobs := []job{{
		text:  s.mainEmbeddingText(doc, record),
		apply: func(v []float64) { record.MainSummary.Embedding = v },
	}}

	sectionTypes := make([]models.SectionType, 0, len(record.SectionSummaries))
	for sectionType := range record.SectionSummaries {
		sectionTypes = append(sectionTypes, sectionType)
	}
	sort.Slice(sectionTypes, func(i, j int) bool { return sectionTypes[i] < sectionTypes[j] })
	for _, sectionType := range sectionTypes {
		st := sectionType
		jobs = append(jobs, job{
			text: ContextualText(doc, record.SectionSummaries[st].Text),
			apply: func(v []float64) {
				entry := record.SectionSummaries[st]
				entry.Embedding = v
				record.SectionSummaries[st] = entry
			},
		})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			vector, err := s.embedder.Embed(ctx, j.text)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			j.apply(vector)
		}(j)
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("embedding summaries for %s: %w", doc.RootID, firstErr)
	}
	return nil
}

// mainEmbeddingText returns the text behind the main summary vector. Combined
// mode folds the section summaries in so broad queries can land on documents
// whose relevant detail lives in one section.
func (s *Summarizer) mainEmbeddingText(doc models.Document, record *models.SummaryRecord) string {
	if s.embedMode != config.SummaryEmbedCombined || len(record.SectionSummaries) == 0 {
		return ContextualText(doc, record.MainSummary.Text)
	}

	parts := []string{record.MainSummary.Text}
	for _, sectionType := range sectionOrder {
		if entry, ok := record.SectionSummaries[sectionType]; ok {
			parts = append(parts, entry.Text)
		}
	}
	return ContextualText(doc, strings.Join(parts, "\n\n"))
}

// groupBySection collects chunk primary texts per section type, preserving
// chunk order within each group.
func groupBySection(doc models.Document, chunks []models.Chunk) map[models.SectionType][]string {
	groups := make(map[models.SectionType][]string)
	for _, chunk := range chunks {
		groups[chunk.Metadata.SectionType] = append(groups[chunk.Metadata.SectionType], chunk.PrimaryText(doc.Content))
	}
	return groups
}

// ContextualText wraps text with document metadata before embedding. The
// wrapper anchors the vector to the document's product and content type so
// near-identical text from different products stays separable.
func ContextualText(doc models.Document, text string) string {
	var sb strings.Builder
	sb.WriteString("Document: " + doc.Title + "\n")
	if doc.ContentType != "" {
		sb.WriteString("Content type: " + string(doc.ContentType) + "\n")
	}
	if len(doc.Products) > 0 {
		sb.WriteString("Products: " + strings.Join(doc.Products, ", ") + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(text)
	return sb.String()
}

// ContextualChunkText is the embedding text for one chunk: the document
// wrapper, the chunk's section summary when available, then the chunk itself.
func ContextualChunkText(doc models.Document, sectionSummary, chunkText string) string {
	if sectionSummary == "" {
		return ContextualText(doc, chunkText)
	}
	return ContextualText(doc, "Section context: "+sectionSummary+"\n\n"+chunkText)
}
