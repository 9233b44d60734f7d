package chatbotService

import (
	"LeadPilot/internal/api/chatbot"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	openaiPkg "LeadPilot/pkg/openai"
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	templateConfidence = 0.7
	hybridConfidence   = 0.5

	defaultClarification = "Could you tell me a bit more about what you're looking for?"

	llmSystemPrompt = "You are a helpful sales assistant for a B2B software product. " +
		"Answer the visitor's question briefly and honestly using the product " +
		"knowledge below when it applies. If you do not know, offer to connect " +
		"them with the sales team."
	llmTemperature = 0.7
	llmMaxTokens   = 220
)

var templateToken = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// industryTerms maps message vocabulary onto the industry half of a
// "<industry>_specific" template scenario. Ordered so a message naming two
// industries resolves the same way every turn.
var industryTerms = []struct {
	name  string
	terms []string
}{
	{"healthcare", []string{"healthcare", "clinic", "hospital", "medical", "patient", "hipaa"}},
	{"finance", []string{"bank", "banking", "fintech", "insurance", "lending", "trading"}},
	{"retail", []string{"retail", "ecommerce", "e-commerce", "storefront", "merchant"}},
	{"education", []string{"school", "university", "students", "education", "campus"}},
}

// generateDraft drafts the reply by confidence band: confident turns use a
// template, middling turns append one knowledge sentence, low-confidence
// turns ask the intent's clarifying question.
func (s *chatbotService) generateDraft(
	snap *snapshot,
	classification chatbot.ClassificationResult,
	items []entity.KnowledgeItem,
	message, industry string,
) chatbot.GeneratedResponse {
	templates := snap.templates[classification.Intent]
	vars := knowledgeVariables(items)

	if classification.Confidence >= templateConfidence && len(templates) > 0 {
		tpl := selectTemplate(templates, message, industry)
		return chatbot.GeneratedResponse{
			Text:   substituteTemplate(tpl.Template, vars),
			Source: chatbot.ResponseSourceTemplate,
		}
	}

	if classification.Confidence >= hybridConfidence && len(templates) > 0 {
		tpl := selectTemplate(templates, message, industry)
		text := substituteTemplate(tpl.Template, vars)
		if sentence := knowledgeSentence(items); sentence != "" {
			text = strings.TrimRight(text, " ") + " " + sentence
		}
		return chatbot.GeneratedResponse{
			Text:   text,
			Source: chatbot.ResponseSourceHybrid,
		}
	}

	if clarification, ok := snap.clarifications[classification.Intent]; ok {
		return chatbot.GeneratedResponse{
			Text:   clarification,
			Source: chatbot.ResponseSourceClarification,
		}
	}

	return chatbot.GeneratedResponse{
		Text:   defaultClarification,
		Source: chatbot.ResponseSourceClarification,
	}
}

// selectTemplate picks the scenario-specific template when an entity in the
// turn gives it away: industry first (message vocabulary, then the visitor
// profile), link requests second, defaulting to the first (highest-priority)
// template.
func selectTemplate(templates []entity.ResponseTemplate, message, industry string) entity.ResponseTemplate {
	lower := strings.ToLower(message)

	if detected := detectIndustry(lower, industry); detected != "" {
		if tpl, ok := findScenario(templates, detected+"_specific"); ok {
			return tpl
		}
	}

	if strings.Contains(lower, "link") || strings.Contains(lower, "url") {
		if tpl, ok := findScenario(templates, "link_request"); ok {
			return tpl
		}
	}

	return templates[0]
}

// detectIndustry prefers a mention in the current message over the stored
// profile industry.
func detectIndustry(lowerMessage, profileIndustry string) string {
	for _, industry := range industryTerms {
		for _, term := range industry.terms {
			if strings.Contains(lowerMessage, term) {
				return industry.name
			}
		}
	}
	return strings.ToLower(strings.TrimSpace(profileIndustry))
}

func findScenario(templates []entity.ResponseTemplate, scenario string) (entity.ResponseTemplate, bool) {
	for _, tpl := range templates {
		if tpl.Scenario == scenario {
			return tpl, true
		}
	}
	return entity.ResponseTemplate{}, false
}

// substituteTemplate resolves {variable} tokens from the knowledge set.
// Unresolved tokens become empty strings, never literal placeholders.
func substituteTemplate(text string, vars map[string]string) string {
	replaced := templateToken.ReplaceAllStringFunc(text, func(token string) string {
		key := strings.Trim(token, "{}")
		return vars[key]
	})

	return strings.Join(strings.Fields(replaced), " ")
}

// completeWithLLM asks the configured provider for a better answer on
// clarification-grade turns, grounding it on the retrieved knowledge. Any
// failure keeps the drafted text.
func (s *chatbotService) completeWithLLM(ctx context.Context, draft chatbot.GeneratedResponse, message string, items []entity.KnowledgeItem) chatbot.GeneratedResponse {
	requestID := contextPkg.GetRequestID(ctx)

	if s.completer == nil || !s.completer.Enabled() {
		return draft
	}

	text, err := s.completer.Complete(ctx, llmPrompt(items), message, openaiPkg.CompletionOptions{
		Temperature: llmTemperature,
		MaxTokens:   llmMaxTokens,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"provider":   s.completer.Name(),
				"error":      err.Error(),
			}).Warn("LLM fallback failed, keeping templated draft")
		}
		return draft
	}

	return chatbot.GeneratedResponse{
		Text:   strings.TrimSpace(text),
		Source: chatbot.ResponseSourceLLM,
	}
}

// llmPrompt appends the retrieved knowledge payloads to the system prompt so
// the provider answers from product facts, not from its priors.
func llmPrompt(items []entity.KnowledgeItem) string {
	if len(items) == 0 {
		return llmSystemPrompt
	}

	var b strings.Builder
	b.WriteString(llmSystemPrompt)
	b.WriteString("\n\nProduct knowledge:")
	for _, item := range items {
		keys := make([]string, 0, len(item.Content))
		for key := range item.Content {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if item.Content[key] == "" {
				continue
			}
			b.WriteString("\n- ")
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(item.Content[key])
		}
	}

	return b.String()
}
