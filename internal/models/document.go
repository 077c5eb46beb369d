// ABOUTME: Document is the raw ingestion unit for a policy page
// ABOUTME: Carries resolved ComponentPath, product affiliations, and cleaned content
package models

// ContentType is the document-level classification.
type ContentType string

const (
	ContentTypeDefinition  ContentType = "definition"
	ContentTypeProcedure   ContentType = "procedure"
	ContentTypeGeneralInfo ContentType = "general_info"
)

// SectionType is the chunk-level classification.
type SectionType string

const (
	SectionRequirement SectionType = "requirement"
	SectionProcedure   SectionType = "procedure"
	SectionDefinition  SectionType = "definition"
	SectionInformation SectionType = "information"
)

// Document is one source unit of policy content. Re-ingesting the same RootID
// supersedes the previous document's chunks and summary.
type Document struct {
	RootID        string        `json:"root_id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Path          ComponentPath `json:"component_path"`
	Products      []string      `json:"products"`
	ContentType   ContentType   `json:"content_type"`
	TopicCategory string        `json:"topic_category,omitempty"`
}
