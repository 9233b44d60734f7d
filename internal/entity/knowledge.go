package entity

import "time"

const (
	KnowledgeTypeFAQ       = "faq"
	KnowledgeTypePricing   = "pricing"
	KnowledgeTypeFeature   = "feature"
	KnowledgeTypeObjection = "objection"
	KnowledgeTypeCaseStudy = "case_study"
)

// KnowledgeItem is a structured content record served by the retriever.
// Content holds the payload fields (answer text, price points, rebuttal
// lines) keyed by name so templates can reference them as variables.
type KnowledgeItem struct {
	ID        string            `db:"id"`
	Type      string            `db:"type"`
	Title     string            `db:"title"`
	Content   map[string]string `db:"content"`
	Tags      []string          `db:"tags"`
	IsActive  bool              `db:"is_active"`
	CreatedAt time.Time         `db:"created_at"`
	UpdatedAt time.Time         `db:"updated_at"`
}
