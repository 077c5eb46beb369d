// ABOUTME: SummaryRecord is the per-document coarse-grained index entry
// ABOUTME: Main summary plus per-section-type summaries with embeddings
package models

// SummaryEntry is one condensed text with its embedding.
type SummaryEntry struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding,omitempty"`
}

// HierarchyNode mirrors one ComponentPath level in the content hierarchy tree.
type HierarchyNode struct {
	ID       string          `json:"id"`
	Level    string          `json:"level"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// SummaryRecord is the summary-collection document for one ingested Document.
// MainSummary is always present. SectionSummaries may cover a subset of the
// section types present among the document's chunks, but never a section type
// the document has no chunks for.
type SummaryRecord struct {
	RootID           string                       `json:"root_id"`
	PageTitle        string                       `json:"page_title"`
	ComponentPath    string                       `json:"component_path"`
	MainSummary      SummaryEntry                 `json:"main_summary"`
	SectionSummaries map[SectionType]SummaryEntry `json:"section_summaries,omitempty"`
	ContentHierarchy HierarchyNode                `json:"content_hierarchy"`
	Products         []string                     `json:"products"`
	TopicCategory    string                       `json:"topic_category,omitempty"`
}

// BuildHierarchy constructs the hierarchy tree for a component path.
func BuildHierarchy(cp ComponentPath) HierarchyNode {
	root := HierarchyNode{ID: cp.Root, Level: "policy"}
	if cp.ProductCategory == "" {
		return root
	}
	category := HierarchyNode{ID: cp.ProductCategory, Level: "product_category"}
	if cp.ContentType != "" {
		category.Children = []HierarchyNode{{ID: cp.ContentType, Level: "content_type"}}
	}
	root.Children = []HierarchyNode{category}
	return root
}
