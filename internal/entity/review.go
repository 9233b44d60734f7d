package entity

import "time"

const (
	ReviewStatusPending  = "pending"
	ReviewStatusReviewed = "reviewed"

	ReviewReasonLowConfidence = "low_confidence"
	ReviewReasonError         = "error"
)

// ReviewQueueItem is a low-confidence or failed exchange queued for a human
// to audit. Corrections feed future pattern tuning.
type ReviewQueueItem struct {
	ID                string     `db:"id"`
	ConversationID    string     `db:"conversation_id"`
	VisitorMessage    string     `db:"visitor_message"`
	BotResponse       string     `db:"bot_response"`
	DetectedIntent    string     `db:"detected_intent"`
	Confidence        float64    `db:"confidence"`
	Reason            string     `db:"reason"`
	Status            string     `db:"status"`
	CorrectedIntent   string     `db:"corrected_intent"`
	CorrectedResponse string     `db:"corrected_response"`
	ReviewedBy        string     `db:"reviewed_by"`
	ReviewedAt        *time.Time `db:"reviewed_at"`
	CreatedAt         time.Time  `db:"created_at"`
}

// Escalation records one handoff to the sales team and why it fired.
type Escalation struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	Reason         string    `db:"reason"`
	LeadScore      float64   `db:"lead_score"`
	CreatedAt      time.Time `db:"created_at"`
}
