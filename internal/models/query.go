// ABOUTME: QueryClassification captures query intent and product context
// ABOUTME: Produced per query by the QueryClassifier, consumed by the Retriever
package models

// QueryType is the detected intent of a query.
type QueryType string

const (
	QueryGeneral         QueryType = "general"
	QueryProductSpecific QueryType = "product_specific"
	QueryComparison      QueryType = "comparison"
	QueryProcedure       QueryType = "procedure"
)

// QueryClassification is the ephemeral result of classifying one query.
// Products preserves detection order; empty means no product constraint.
type QueryClassification struct {
	Type             QueryType `json:"type"`
	Products         []string  `json:"products"`
	TopicCategory    string    `json:"topic_category"`
	IntentConfidence float64   `json:"intent_confidence"`
}
