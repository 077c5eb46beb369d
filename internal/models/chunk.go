// ABOUTME: Chunk is the unit of detailed retrieval with embedding and metadata
// ABOUTME: Primary spans tile the cleaned document; overlap is the only duplication
package models

// ChunkMetadata is the filterable metadata attached to every chunk.
type ChunkMetadata struct {
	ComponentPath string      `json:"component_path"`
	Products      []string    `json:"products"`
	ContentType   ContentType `json:"content_type"`
	SectionType   SectionType `json:"section_type"`
	TopicCategory string      `json:"topic_category,omitempty"`
}

// ChunkContext carries local context for answer generation.
type ChunkContext struct {
	ParentSectionSummary string            `json:"parent_section_summary,omitempty"`
	ProductContext       map[string]string `json:"product_context,omitempty"`
}

// Chunk is one embedded, independently retrievable text unit. A chunk is
// owned by exactly one document and is immutable after creation except for
// re-embedding on reprocessing.
//
// Start/End delimit the chunk's primary (non-overlap) span in the cleaned
// document content. Text may additionally carry up to Overlap characters of
// the preceding chunk for continuity.
type Chunk struct {
	ChunkID   string        `json:"chunk_id"`
	RootID    string        `json:"root_id"`
	Seq       int           `json:"seq"`
	Text      string        `json:"text"`
	Start     int           `json:"start"`
	End       int           `json:"end"`
	Embedding []float64     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
	Context   ChunkContext  `json:"context"`
}

// PrimaryText returns the chunk text without the leading overlap region.
func (c Chunk) PrimaryText(fullContent string) string {
	if c.Start < 0 || c.End > len(fullContent) || c.Start > c.End {
		return c.Text
	}
	return fullContent[c.Start:c.End]
}
