package entity

import "time"

// ScenarioClarification marks templates that hold the clarifying question
// asked when classification confidence is too low to answer directly.
const ScenarioClarification = "clarification"

// ResponseTemplate is a reply skeleton keyed by intent and scenario.
// Template text may contain {variable} placeholders resolved at render time.
type ResponseTemplate struct {
	ID         string    `db:"id"`
	IntentName string    `db:"intent_name"`
	Scenario   string    `db:"scenario"`
	Template   string    `db:"template"`
	Variables  []string  `db:"variables"`
	Priority   int       `db:"priority"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
