package experiment

import (
	"LeadPilot/internal/entity"
	"time"
)

type PersonalizeInput struct {
	BaseText     string
	LeadScore    float64
	Profile      entity.VisitorProfile
	Conversation entity.Conversation
	Messages     []entity.Message
}

type PersonalizeResult struct {
	Text        string `json:"text"`
	VariantID   string `json:"variant_id,omitempty"`
	Stage       string `json:"stage"`
	Personality string `json:"personality"`
}

type InteractionEvent struct {
	VariantID      string  `json:"variant_id" validate:"required,max=64"`
	ConversationID string  `json:"conversation_id" validate:"required,max=64"`
	Responded      bool    `json:"responded"`
	Positive       bool    `json:"positive"`
	Converted      bool    `json:"converted"`
	ScoreDelta     float64 `json:"score_delta"`
	HasScoreDelta  bool    `json:"has_score_delta"`
}

type VariantResponse struct {
	ID                string    `json:"id"`
	ScenarioKey       string    `json:"scenario_key"`
	Name              string    `json:"name"`
	TimesShown        int       `json:"times_shown"`
	ResponsesReceived int       `json:"responses_received"`
	PositiveResponses int       `json:"positive_responses"`
	Conversions       int       `json:"conversions"`
	AvgScoreDelta     float64   `json:"avg_score_delta"`
	IsControl         bool      `json:"is_control"`
	IsWinner          bool      `json:"is_winner"`
	ConfidenceLevel   float64   `json:"confidence_level"`
	CreatedAt         time.Time `json:"created_at"`
}

type VariantListResponse struct {
	Variants []VariantResponse `json:"variants"`
	Total    int               `json:"total"`
}

type SignificanceResponse struct {
	ScenarioKey string            `json:"scenario_key"`
	Evaluated   int               `json:"evaluated"`
	Promoted    []string          `json:"promoted,omitempty"`
	Winners     map[string]float64 `json:"winners,omitempty"`
}
