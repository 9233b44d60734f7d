package experimentService

import (
	"LeadPilot/internal/api/experiment"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"LeadPilot/pkg/matcher"
	"context"
	"math"
	"math/rand"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Linguistic indicators per communication style. Each matched regex counts
// once per pass; the driver profile additionally gets credit for terse
// messages below the short-sentence cutoff.
var personalityPatterns = []matcher.Pattern{
	{
		Name: entity.PersonalityAnalytical,
		Regexes: []string{
			`\bdata\b`, `\bmetrics?\b`, `\broi\b`, `\bintegrat\w*`,
			`\bspecification`, `\bexactly\b`, `\bcompar\w+`, `how (does|do) .+ work`,
		},
		RegexWeight: 1,
	},
	{
		Name: entity.PersonalityExpressive,
		Regexes: []string{
			`!`, `\bexcit\w+`, `\blove\b`, `\bamazing\b`, `\bawesome\b`, `\bgreat\b`,
		},
		RegexWeight: 1,
	},
	{
		Name: entity.PersonalityDriver,
		Regexes: []string{
			`\basap\b`, `\bnow\b`, `\bquick\w*`, `bottom line`, `\bdecisio?n\b`, `\bdeadline\b`,
		},
		RegexWeight: 1,
	},
	{
		Name: entity.PersonalityAmiable,
		Regexes: []string{
			`\bthanks?\b`, `\bplease\b`, `\bappreciate\b`, `\bhelp\b`, `\btogether\b`, `\bour team\b`,
		},
		RegexWeight: 1,
	},
}

var personalityMatcher = matcher.New(personalityPatterns, 100, nil)

const (
	shortSentenceWords = 6
	explorationBonus   = 0.1
	driverMaxChars     = 100
)

var variableToken = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

func (s *personalizationService) Personalize(ctx context.Context, in experiment.PersonalizeInput) (experiment.PersonalizeResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	personality := in.Profile.Personality
	if personality == "" {
		personality = s.DetectPersonality(in.Messages)
	}
	stage := s.DetermineStage(in.LeadScore)

	result := experiment.PersonalizeResult{
		Stage:       stage,
		Personality: personality,
	}

	variant, ok, err := s.serveVariant(ctx, stage+"_"+personality, stage)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Variant selection failed, serving base text")
	}

	text := in.BaseText
	if ok {
		result.VariantID = variant.ID
		text = variant.Template
	}

	text = s.substituteVariables(text, in)
	result.Text = s.shapeTone(text, personality)

	return result, nil
}

// serveVariant fetches the variant pool for the composite scenario key,
// falling back to the stage-only pool, picks one probabilistically and
// records the serve.
func (s *personalizationService) serveVariant(ctx context.Context, scenarioKey, fallbackKey string) (entity.MessageVariant, bool, error) {
	client, err := s.experimentRepo.NewClient(false)
	if err != nil {
		return entity.MessageVariant{}, false, err
	}

	variants, err := client.Variants.GetActiveByScenario(ctx, scenarioKey)
	if err != nil {
		return entity.MessageVariant{}, false, err
	}

	if len(variants) == 0 && fallbackKey != scenarioKey {
		variants, err = client.Variants.GetActiveByScenario(ctx, fallbackKey)
		if err != nil {
			return entity.MessageVariant{}, false, err
		}
	}

	if len(variants) == 0 {
		return entity.MessageVariant{}, false, nil
	}

	chosen := variants[pickVariant(variants, rand.Float64())]

	if err := client.Variants.IncrementCounters(ctx, chosen.ID, entity.VariantCounterDelta{Shown: 1}); err != nil {
		return entity.MessageVariant{}, false, err
	}

	return chosen, true, nil
}

// pickVariant maps a uniform roll in [0,1) onto the variants, each weighted
// by conversion rate plus an exploration bonus that shrinks as a variant
// accumulates shows. The choice stays probabilistic so low-scoring arms are
// still explored.
func pickVariant(variants []entity.MessageVariant, roll float64) int {
	weights := make([]float64, len(variants))
	var sum float64
	for i, v := range variants {
		weights[i] = selectionScore(v)
		sum += weights[i]
	}

	if sum <= 0 {
		return int(roll * float64(len(variants)))
	}

	target := roll * sum
	var acc float64
	for i, w := range weights {
		acc += w
		if target < acc {
			return i
		}
	}
	return len(variants) - 1
}

func selectionScore(v entity.MessageVariant) float64 {
	var rate float64
	if v.TimesShown > 0 {
		rate = float64(v.Conversions) / float64(v.TimesShown)
	}
	return rate + explorationBonus/math.Sqrt(float64(v.TimesShown)+1)
}

func (s *personalizationService) DetectPersonality(messages []entity.Message) string {
	scores := make(map[string]float64, 4)
	shortCount := 0
	for _, msg := range messages {
		if msg.Role != entity.RoleVisitor {
			continue
		}
		for _, res := range personalityMatcher.Score(msg.Content) {
			scores[res.Name] += res.Score
		}
		if len(strings.Fields(msg.Content)) <= shortSentenceWords {
			shortCount++
		}
	}
	scores[entity.PersonalityDriver] += float64(shortCount)

	best := entity.PersonalityAmiable
	bestScore := 0.0
	for _, p := range []string{
		entity.PersonalityAnalytical,
		entity.PersonalityExpressive,
		entity.PersonalityDriver,
		entity.PersonalityAmiable,
	} {
		if scores[p] > bestScore {
			best = p
			bestScore = scores[p]
		}
	}

	return best
}

func (s *personalizationService) DetermineStage(leadScore float64) string {
	switch {
	case leadScore < 20:
		return entity.StageAwareness
	case leadScore < 40:
		return entity.StageInterest
	case leadScore < 60:
		return entity.StageConsideration
	case leadScore < 80:
		return entity.StageEvaluation
	default:
		return entity.StageDecision
	}
}

// substituteVariables resolves {tokens} from the visitor and conversation
// context. Unresolved personal tokens fall back to a generic placeholder so
// the visitor never sees a literal brace token.
func (s *personalizationService) substituteVariables(text string, in experiment.PersonalizeInput) string {
	company := in.Profile.Company
	if company == "" {
		company = in.Conversation.CompanyName
	}

	values := map[string]string{
		"response": in.BaseText,
		"name":     in.Profile.Name,
		"company":  company,
		"industry": in.Profile.Industry,
		"use_case": in.Conversation.UseCase,
	}

	defaults := map[string]string{
		"name":     "there",
		"company":  "your company",
		"industry": "your industry",
		"use_case": "your project",
	}

	return variableToken.ReplaceAllStringFunc(text, func(token string) string {
		key := strings.Trim(token, "{}")
		if v, ok := values[key]; ok && v != "" {
			return v
		}
		if d, ok := defaults[key]; ok {
			return d
		}
		return ""
	})
}

func (s *personalizationService) shapeTone(text, personality string) string {
	switch personality {
	case entity.PersonalityAnalytical:
		return "Based on the data, " + text
	case entity.PersonalityDriver:
		runes := []rune(text)
		if len(runes) > driverMaxChars {
			return string(runes[:driverMaxChars]) + "..."
		}
		return text
	case entity.PersonalityExpressive:
		if strings.HasSuffix(text, ".") {
			return strings.TrimSuffix(text, ".") + "!"
		}
		return text
	default:
		return text
	}
}
