package chatbot

import "time"

type ChatMessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"omitempty,max=64"`
	VisitorID      string `json:"visitor_id" validate:"required,max=64"`
	Message        string `json:"message" validate:"required,max=4000"`
	PageURL        string `json:"page_url" validate:"omitempty,max=512"`
}

type ChatMessageResponse struct {
	ConversationID string  `json:"conversation_id"`
	Reply          string  `json:"reply"`
	Intent         string  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	Fallback       bool    `json:"fallback"`
	LeadScore      float64 `json:"lead_score"`
	Recommendation string  `json:"recommendation"`
	Escalated      bool    `json:"escalated"`
	ReviewQueued   bool    `json:"review_queued"`
	VariantID      string  `json:"variant_id,omitempty"`

	QuickActions []string `json:"quick_actions,omitempty"`
}

type ClassificationResult struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Fallback   bool     `json:"fallback"`
	ActionType string   `json:"action_type"`
	HighIntent bool     `json:"high_intent"`
	Matched    []string `json:"matched,omitempty"`
}

type GeneratedResponse struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	VariantID string `json:"variant_id,omitempty"`
}

const (
	ResponseSourceTemplate      = "template"
	ResponseSourceHybrid        = "hybrid"
	ResponseSourceClarification = "clarification"
	ResponseSourceLLM           = "llm"
	ResponseSourceFallback      = "fallback"
)

type ReloadResponse struct {
	Patterns  int       `json:"patterns"`
	Templates int       `json:"templates"`
	Version   string    `json:"version"`
	LoadedAt  time.Time `json:"loaded_at"`
}

type ReviewItemResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	VisitorMessage string    `json:"visitor_message"`
	BotResponse    string    `json:"bot_response"`
	DetectedIntent string    `json:"detected_intent"`
	Confidence     float64   `json:"confidence"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReviewListResponse struct {
	Items []ReviewItemResponse `json:"items"`
	Total int                  `json:"total"`
}

type ReviewUpdateRequest struct {
	CorrectedIntent   string `json:"corrected_intent" validate:"omitempty,max=64"`
	CorrectedResponse string `json:"corrected_response" validate:"omitempty,max=4000"`
}
