package chatbotService

import (
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"
	"sort"

	"github.com/sirupsen/logrus"
)

const maxKnowledgeItems = 5

// retrieveKnowledge is a tag-containment lookup against the knowledge store.
// A storage failure degrades to an empty set so the turn can still answer
// from the bare template.
func (s *chatbotService) retrieveKnowledge(ctx context.Context, intentName string) []entity.KnowledgeItem {
	requestID := contextPkg.GetRequestID(ctx)

	if intentName == "" || intentName == entity.IntentUnknown {
		return nil
	}

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Knowledge lookup could not open storage client")
		return nil
	}

	items, err := client.Knowledge.GetByTags(ctx, []string{intentName}, maxKnowledgeItems)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"intent":     intentName,
			"error":      err.Error(),
		}).Warn("Knowledge lookup failed, continuing without knowledge")
		return nil
	}
	if len(items) > 0 {
		return items
	}

	// No item is tagged for this intent, serve the general FAQ entries.
	faqs, err := client.Knowledge.GetActiveByType(ctx, entity.KnowledgeTypeFAQ)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"intent":     intentName,
			"error":      err.Error(),
		}).Warn("FAQ fallback lookup failed, continuing without knowledge")
		return nil
	}
	if len(faqs) > maxKnowledgeItems {
		faqs = faqs[:maxKnowledgeItems]
	}
	return faqs
}

// knowledgeVariables flattens the retrieved payloads into one substitution
// map. Earlier items win on key collisions, matching storage order.
func knowledgeVariables(items []entity.KnowledgeItem) map[string]string {
	vars := make(map[string]string)
	for _, item := range items {
		for key, value := range item.Content {
			if _, exists := vars[key]; !exists {
				vars[key] = value
			}
		}
	}
	return vars
}

// knowledgeSentence picks one supporting sentence for hybrid responses,
// preferring an explicit summary field.
func knowledgeSentence(items []entity.KnowledgeItem) string {
	for _, item := range items {
		if summary, ok := item.Content["summary"]; ok && summary != "" {
			return summary
		}
	}
	for _, item := range items {
		keys := make([]string, 0, len(item.Content))
		for key := range item.Content {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if item.Content[key] != "" {
				return item.Content[key]
			}
		}
	}
	return ""
}
