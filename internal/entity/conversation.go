package entity

import "time"

const (
	RoleVisitor = "visitor"
	RoleBot     = "bot"

	PersonalityAnalytical = "analytical"
	PersonalityExpressive = "expressive"
	PersonalityDriver     = "driver"
	PersonalityAmiable    = "amiable"

	StageAwareness     = "awareness"
	StageInterest      = "interest"
	StageConsideration = "consideration"
	StageEvaluation    = "evaluation"
	StageDecision      = "decision"
)

// Conversation is the durable state of one visitor session. Disclosure
// fields are set-once: the first non-empty value sticks and later writes
// are ignored at the storage layer.
type Conversation struct {
	ID               string     `db:"id"`
	VisitorID        string     `db:"visitor_id"`
	MessageCount     int        `db:"message_count"`
	QuestionCount    int        `db:"question_count"`
	ObjectionCount   int        `db:"objection_count"`
	CompanyName      string     `db:"company_name"`
	BudgetIdentified string     `db:"budget_identified"`
	Timeline         string     `db:"timeline"`
	UseCase          string     `db:"use_case"`
	AuthorityLevel   string     `db:"authority_level"`
	MatchedSignals   []string   `db:"matched_signals"`
	PagesVisited     []string   `db:"pages_visited"`
	LastLeadScore    float64    `db:"last_lead_score"`
	EscalatedAt      *time.Time `db:"escalated_at"`
	StartedAt        time.Time  `db:"started_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

// DisclosureCount reports how many of the five qualification data points
// the visitor has volunteered so far.
func (c Conversation) DisclosureCount() int {
	count := 0
	for _, v := range []string{c.CompanyName, c.BudgetIdentified, c.Timeline, c.UseCase, c.AuthorityLevel} {
		if v != "" {
			count++
		}
	}
	return count
}

// Escalated reports whether the conversation has already been handed off.
func (c Conversation) Escalated() bool {
	return c.EscalatedAt != nil
}

// Message is one turn of the transcript.
type Message struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	Role           string    `db:"role"`
	Content        string    `db:"content"`
	Intent         string    `db:"intent"`
	Confidence     float64   `db:"confidence"`
	VariantID      string    `db:"variant_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// VisitorProfile carries what is known about the visitor across sessions.
type VisitorProfile struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Company     string    `db:"company"`
	Industry    string    `db:"industry"`
	Personality string    `db:"personality"`
	IsReturning bool      `db:"is_returning"`
	LastSeenAt  time.Time `db:"last_seen_at"`
	CreatedAt   time.Time `db:"created_at"`
}
