package entity

const (
	RecommendationImmediateHandoff = "immediate_handoff"
	RecommendationContinueBot      = "continue_bot"
	RecommendationNurture          = "nurture"
	RecommendationSelfServe        = "self_serve"
)

// QualificationScore is the lead score broken down by dimension. Each
// dimension field holds its raw 0-100 sub-score; Total is the weighted
// combination, clamped to the same 0-100 scale.
type QualificationScore struct {
	Keyword    float64 `json:"keyword"`
	Behavior   float64 `json:"behavior"`
	Disclosure float64 `json:"disclosure"`
	Velocity   float64 `json:"velocity"`
	Pattern    float64 `json:"pattern"`

	Total           float64  `json:"total"`
	Recommendation  string   `json:"recommendation"`
	MatchedPatterns []string `json:"matched_patterns"`
}
