package entity

import "time"

// MessageVariant is one candidate wording inside an A/B experiment bucket.
// Counters are only ever moved through additive deltas at the storage layer
// so concurrent serves never lose updates.
type MessageVariant struct {
	ID                string    `db:"id"`
	ScenarioKey       string    `db:"scenario_key"`
	Name              string    `db:"name"`
	Template          string    `db:"template"`
	TimesShown        int       `db:"times_shown"`
	ResponsesReceived int       `db:"responses_received"`
	PositiveResponses int       `db:"positive_responses"`
	Conversions       int       `db:"conversions"`
	AvgScoreDelta     float64   `db:"avg_score_delta"`
	IsControl         bool      `db:"is_control"`
	IsWinner          bool      `db:"is_winner"`
	ConfidenceLevel   float64   `db:"confidence_level"`
	IsActive          bool      `db:"is_active"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// VariantCounterDelta is the additive update applied in a single statement.
// ScoreDelta feeds the running mean and is only applied when HasScoreDelta
// is set, since a zero delta is a legitimate observation.
type VariantCounterDelta struct {
	Shown         int
	Responses     int
	Positives     int
	Conversions   int
	ScoreDelta    float64
	HasScoreDelta bool
}

// VariantInteraction is the per-serve outcome record used for audits and
// offline analysis of the experiment history.
type VariantInteraction struct {
	ID             string    `db:"id"`
	VariantID      string    `db:"variant_id"`
	ConversationID string    `db:"conversation_id"`
	Responded      bool      `db:"responded"`
	Positive       bool      `db:"positive"`
	Converted      bool      `db:"converted"`
	ScoreDelta     float64   `db:"score_delta"`
	CreatedAt      time.Time `db:"created_at"`
}
