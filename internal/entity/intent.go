package entity

import "time"

// IntentPattern is one configurable classification rule. Patterns are loaded
// from storage into an immutable in-memory snapshot; Priority preserves
// declaration order so ties resolve deterministically.
type IntentPattern struct {
	ID                  string    `db:"id"`
	Name                string    `db:"name"`
	Keywords            []string  `db:"keywords"`
	Regexes             []string  `db:"regexes"`
	ConfidenceThreshold float64   `db:"confidence_threshold"`
	HighIntent          bool      `db:"high_intent"`
	RequiresData        bool      `db:"requires_data"`
	ActionType          string    `db:"action_type"`
	Priority            int       `db:"priority"`
	IsActive            bool      `db:"is_active"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

const (
	IntentUnknown          = "unknown"
	IntentHighValueRequest = "high_value_request"

	ActionTypeAnswer      = "answer"
	ActionTypeEscalate    = "escalate"
	ActionTypeCollectData = "collect_data"
)
