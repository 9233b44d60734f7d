package chatbotService

import (
	"LeadPilot/internal/entity"
	"LeadPilot/pkg/matcher"
	"math"
	"strings"
	"time"
)

// Fixed dimension weights. They sum to 1.0 so the weighted total is bounded
// by the per-dimension clamp, but the total is clamped again anyway.
const (
	weightKeyword    = 0.25
	weightBehavior   = 0.20
	weightDisclosure = 0.15
	weightVelocity   = 0.10
	weightPattern    = 0.30
)

const (
	bandImmediate = 80.0
	bandContinue  = 60.0
	bandNurture   = 40.0
)

var keywordCategories = []matcher.Pattern{
	{
		Name: "highIntent",
		Keywords: []string{
			"pricing", "price", "cost", "buy", "purchase", "demo", "trial", "quote", "contract",
		},
		KeywordWeight: 15,
	},
	{
		Name: "mediumIntent",
		Keywords: []string{
			"features", "integration", "how does", "compare", "support", "onboarding",
		},
		KeywordWeight: 8,
	},
	{
		Name: "lowIntent",
		Keywords: []string{
			"just looking", "curious", "browsing", "maybe later", "someday",
		},
		KeywordWeight: 3,
	},
	{
		Name: "urgency",
		Keywords: []string{
			"urgent", "asap", "immediately", "today", "this week", "right away",
		},
		KeywordWeight: 20,
	},
	{
		Name: "budget",
		Keywords: []string{
			"budget", "approved", "funding", "allocated", "spend",
		},
		KeywordWeight: 12,
	},
	{
		Name: "authority",
		Keywords: []string{
			"i decide", "my team", "our company", "we need", "decision maker",
		},
		KeywordWeight: 10,
	},
}

var buyingSignalPatterns = []matcher.Pattern{
	{
		Name: "decision_maker",
		Regexes: []string{
			`\bi('m| am) the\b`, `\bi (decide|approve|sign off)\b`, `\bmy (call|decision)\b`,
		},
		RegexWeight: 25,
	},
	{
		Name: "comparison_shopper",
		Regexes: []string{
			`\b(vs|versus|compared? (to|with))\b`, `\b(alternative|competitor)s?\b`,
		},
		RegexWeight: 20,
	},
	{
		Name: "implementation_planning",
		Regexes: []string{
			`\b(implement|roll ?out|onboard|deploy|migrat)\w*\b`, `\btimeline for\b`,
		},
		RegexWeight: 30,
	},
	{
		Name: "budget_holder",
		Regexes: []string{
			`\bbudget (is|of|approved)\b`, `\bwe('ve| have) (a budget|allocated)\b`, `\bfunding\b`,
		},
		RegexWeight: 25,
	},
	{
		Name: "technical_evaluator",
		Regexes: []string{
			`\b(api|sdk|sso|webhook|security|compliance|architecture)s?\b`,
		},
		RegexWeight: 15,
	},
}

var (
	keywordMatcher      = matcher.New(keywordCategories, 0, nil)
	buyingSignalMatcher = matcher.New(buyingSignalPatterns, 0, nil)
)

var buyingSignalWeights = map[string]float64{
	"decision_maker":          25,
	"comparison_shopper":      20,
	"implementation_planning": 30,
	"budget_holder":           25,
	"technical_evaluator":     15,
}

// CalculateLeadScore runs the five analyzers over the conversation state and
// the new message. Analyzers never fail the score; a missing input just
// contributes zero.
func (s *chatbotService) CalculateLeadScore(
	conversation entity.Conversation,
	profile entity.VisitorProfile,
	messages []entity.Message,
	newMessage string,
) entity.QualificationScore {
	keyword := s.analyzeKeywords(newMessage)
	behavior := s.analyzeBehavior(conversation, messages, newMessage)
	disclosure := s.analyzeDisclosure(conversation)
	velocity := s.analyzeVelocity(conversation, profile)
	pattern, matched := s.analyzePatterns(conversation, newMessage)

	total := weightKeyword*keyword +
		weightBehavior*behavior +
		weightDisclosure*disclosure +
		weightVelocity*velocity +
		weightPattern*pattern

	score := entity.QualificationScore{
		Keyword:         keyword,
		Behavior:        behavior,
		Disclosure:      disclosure,
		Velocity:        velocity,
		Pattern:         pattern,
		Total:           clampScore(total),
		MatchedPatterns: matched,
	}
	score.Recommendation = recommendationBand(score.Total)

	return score
}

func (s *chatbotService) analyzeKeywords(message string) float64 {
	var total float64
	for _, res := range keywordMatcher.Score(message) {
		total += res.Score
	}

	return clampScore(total)
}

func (s *chatbotService) analyzeBehavior(conversation entity.Conversation, messages []entity.Message, newMessage string) float64 {
	var score float64

	if last := lastMessageAt(messages); !last.IsZero() {
		gap := time.Since(last)
		switch {
		case gap < 5*time.Minute:
			score += 20
		case gap < 15*time.Minute:
			score += 10
		case gap < 30*time.Minute:
			score += 5
		}
	}

	switch {
	case len(newMessage) > 50:
		score += 15
	case len(newMessage) > 20:
		score += 8
	}

	score += 5 * float64(conversation.QuestionCount)

	for _, page := range conversation.PagesVisited {
		switch {
		case strings.Contains(page, "pricing"):
			score += 15
		case strings.Contains(page, "demo"):
			score += 20
		case strings.Contains(page, "case-studies"), strings.Contains(page, "case_studies"):
			score += 10
		}
	}

	return clampScore(score)
}

func (s *chatbotService) analyzeDisclosure(conversation entity.Conversation) float64 {
	var score float64

	if conversation.CompanyName != "" {
		score += 20
	}
	if conversation.BudgetIdentified != "" {
		score += 25
	}
	if conversation.Timeline != "" {
		score += 20
	}
	if conversation.UseCase != "" {
		score += 15
	}
	if conversation.AuthorityLevel != "" {
		score += 20
	}

	if conversation.DisclosureCount() >= 4 {
		score += 25
	}

	return clampScore(score)
}

func (s *chatbotService) analyzeVelocity(conversation entity.Conversation, profile entity.VisitorProfile) float64 {
	var score float64

	minutes := math.Max(time.Since(conversation.StartedAt).Minutes(), 1.0/60.0)
	perMinute := float64(conversation.MessageCount) / minutes
	switch {
	case perMinute > 2:
		score += 30
	case perMinute > 1:
		score += 20
	case perMinute > 0.5:
		score += 10
	}

	switch {
	case conversation.MessageCount > 10:
		score += 20
	case conversation.MessageCount > 5:
		score += 10
	}

	if profile.IsReturning {
		score += 15
	}

	return clampScore(score)
}

// analyzePatterns combines signals matched on the current message with the
// signals persisted from earlier turns. The newly matched names are returned
// so the caller can persist them.
func (s *chatbotService) analyzePatterns(conversation entity.Conversation, message string) (float64, []string) {
	seen := make(map[string]bool, len(conversation.MatchedSignals))
	for _, name := range conversation.MatchedSignals {
		seen[name] = true
	}

	var fresh []string
	for _, res := range buyingSignalMatcher.Score(message) {
		if res.Score > 0 && !seen[res.Name] {
			seen[res.Name] = true
			fresh = append(fresh, res.Name)
		}
	}

	var score float64
	for name := range seen {
		score += buyingSignalWeights[name]
	}

	return clampScore(score), fresh
}

func recommendationBand(total float64) string {
	switch {
	case total >= bandImmediate:
		return entity.RecommendationImmediateHandoff
	case total >= bandContinue:
		return entity.RecommendationContinueBot
	case total >= bandNurture:
		return entity.RecommendationNurture
	default:
		return entity.RecommendationSelfServe
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func lastMessageAt(messages []entity.Message) time.Time {
	if len(messages) == 0 {
		return time.Time{}
	}
	return messages[len(messages)-1].CreatedAt
}
