package chatbotService

import (
	"LeadPilot/internal/api/chatbot"
	"LeadPilot/internal/api/experiment"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	redisPkg "LeadPilot/pkg/redis"
	"LeadPilot/pkg/s3"
	"LeadPilot/pkg/webhook"
	websocketPkg "LeadPilot/pkg/websocket"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const (
	safeFallbackReply = "Sorry, something went wrong on our side. A member of our team will follow up with you shortly."

	reviewConfidence        = 0.6
	escalationScore         = 80.0
	escalationMinConfidence = 0.3
	escalationMaxObjections = 2

	historyLimit         = 50
	conversationCacheTTL = 30 * time.Minute
)

const (
	escalationReasonScore      = "high_lead_score"
	escalationReasonHighValue  = "high_value_intent"
	escalationReasonHuman      = "human_requested"
	escalationReasonConfidence = "low_confidence"
	escalationReasonObjections = "repeated_objections"
)

var humanRequestPattern = regexp.MustCompile(
	`(?i)\b(talk|speak|connect|chat)\s+(to|with)\s+(a\s+|an\s+)?(human|person|agent|rep|representative|someone)\b`,
)

var (
	companyPattern   = regexp.MustCompile(`(?i)(?:i work (?:at|for)|my company is|we'?re from|on behalf of)\s+([a-z0-9&.\- ]{2,40})`)
	budgetPattern    = regexp.MustCompile(`(?i)(\$\s?\d[\d,.]*\s*(?:k|m|million|thousand)?|budget (?:is|of|around)\s+[^.,!?]{2,30})`)
	timelinePattern  = regexp.MustCompile(`(?i)\b(this (?:week|month|quarter|year)|next (?:week|month|quarter|year)|within \d+ (?:days?|weeks?|months?)|q[1-4]|asap|by (?:the )?end of [a-z]+)\b`)
	useCasePattern   = regexp.MustCompile(`(?i)(?:we need(?: it| this)? (?:for|to)|looking (?:for|to)|trying to|use it (?:for|to))\s+([^.!?]{3,80})`)
	authorityPattern = regexp.MustCompile(`(?i)\b(i'?m the (?:ceo|cto|cfo|coo|founder|owner|director|vp|head of [a-z ]+)|i (?:decide|approve|sign off)|decision maker)\b`)
)

// HandleMessage runs one conversation turn end to end. It never returns a
// pipeline error to the caller: any unexpected failure degrades to a safe
// fallback reply plus an error-tagged review queue entry.
func (s *chatbotService) HandleMessage(ctx context.Context, req chatbot.ChatMessageRequest) (resp chatbot.ChatMessageResponse, err error) {
	requestID := contextPkg.GetRequestID(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"panic":      fmt.Sprintf("%v", rec),
			}).Error("Message pipeline panicked, returning safe fallback")
			resp = s.safeFallback(req)
			err = nil
		}
	}()

	if strings.TrimSpace(req.Message) == "" {
		return chatbot.ChatMessageResponse{}, chatbot.ErrEmptyMessage
	}

	conversation, profile, history, loadErr := s.loadState(ctx, req)
	if loadErr != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      loadErr.Error(),
		}).Error("Failed to load conversation state")
		return s.safeFallback(req), nil
	}
	prevScore := conversation.LastLeadScore

	snap, snapErr := s.getSnapshot(ctx)
	var classification chatbot.ClassificationResult
	if snapErr != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      snapErr.Error(),
		}).Warn("Pattern snapshot unavailable, classifying as unknown")
		classification = chatbot.ClassificationResult{
			Intent:     entity.IntentUnknown,
			Confidence: unknownConfidence,
			Fallback:   true,
		}
	} else {
		classification = classifyWith(snap, req.Message)
	}

	items := s.retrieveKnowledge(ctx, classification.Intent)

	score := s.CalculateLeadScore(conversation, profile, history, req.Message)

	s.persistTurnState(ctx, &conversation, req, classification, score)

	var draft chatbot.GeneratedResponse
	if snap != nil {
		draft = s.generateDraft(snap, classification, items, req.Message, profile.Industry)
	} else {
		draft = chatbot.GeneratedResponse{
			Text:   defaultClarification,
			Source: chatbot.ResponseSourceFallback,
		}
	}

	if classification.Fallback || draft.Source == chatbot.ResponseSourceClarification {
		draft = s.completeWithLLM(ctx, draft, req.Message, items)
	}

	finalText := draft.Text
	variantID := ""
	personalized, persErr := s.personalization.Personalize(ctx, experiment.PersonalizeInput{
		BaseText:     draft.Text,
		LeadScore:    score.Total,
		Profile:      profile,
		Conversation: conversation,
		Messages:     history,
	})
	if persErr != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      persErr.Error(),
		}).Warn("Personalization failed, serving draft text")
	} else {
		finalText = personalized.Text
		variantID = personalized.VariantID
		if profile.Personality == "" {
			profile.Personality = personalized.Personality
		}
	}

	s.recordTurn(ctx, conversation, req.Message, finalText, classification, variantID)
	s.trackPreviousVariant(ctx, conversation, history, req.Message, score, prevScore)

	resp = chatbot.ChatMessageResponse{
		ConversationID: conversation.ID,
		Reply:          finalText,
		Intent:         classification.Intent,
		Confidence:     classification.Confidence,
		Fallback:       classification.Fallback,
		LeadScore:      score.Total,
		Recommendation: score.Recommendation,
		VariantID:      variantID,
		QuickActions:   quickActions(score.Recommendation),
	}

	if reason, triggered := s.shouldEscalate(conversation, classification, score, req.Message); triggered && !conversation.Escalated() {
		s.escalate(ctx, conversation, profile, classification, score, req.Message, finalText, reason, history)
		now := time.Now()
		conversation.EscalatedAt = &now
		resp.Escalated = true
	}

	if classification.Confidence < reviewConfidence {
		s.queueReview(ctx, entity.ReviewQueueItem{
			ConversationID: conversation.ID,
			VisitorMessage: req.Message,
			BotResponse:    finalText,
			DetectedIntent: classification.Intent,
			Confidence:     classification.Confidence,
			Reason:         entity.ReviewReasonLowConfidence,
		})
		resp.ReviewQueued = true
	}

	s.finishTurn(ctx, conversation, profile)

	return resp, nil
}

// classifyWith is the snapshot-bound core of Classify so a turn scores
// against one consistent pattern set.
func classifyWith(snap *snapshot, message string) chatbot.ClassificationResult {
	best, ok := snap.matcher.Best(message)
	if !ok {
		return chatbot.ClassificationResult{
			Intent:     entity.IntentUnknown,
			Confidence: unknownConfidence,
			Fallback:   true,
		}
	}

	pattern := snap.byName[best.Name]
	matched := make([]string, 0, len(best.Matches))
	for _, m := range best.Matches {
		matched = append(matched, m.Term)
	}

	result := chatbot.ClassificationResult{
		Intent:     best.Name,
		ActionType: pattern.ActionType,
		HighIntent: pattern.HighIntent,
		Matched:    matched,
	}

	raw := best.Score / maxPatternScore
	if raw >= pattern.ConfidenceThreshold {
		result.Confidence = raw
	} else {
		result.Confidence = raw * lowConfidencePenalty
		result.Fallback = true
	}

	return result
}

func (s *chatbotService) safeFallback(req chatbot.ChatMessageRequest) chatbot.ChatMessageResponse {
	detached := contextPkg.Detach(context.Background())
	s.queueReview(detached, entity.ReviewQueueItem{
		ConversationID: req.ConversationID,
		VisitorMessage: req.Message,
		BotResponse:    safeFallbackReply,
		DetectedIntent: entity.IntentUnknown,
		Reason:         entity.ReviewReasonError,
	})

	return chatbot.ChatMessageResponse{
		ConversationID: req.ConversationID,
		Reply:          safeFallbackReply,
		Intent:         entity.IntentUnknown,
		Confidence:     0,
		Fallback:       true,
		ReviewQueued:   true,
	}
}

func (s *chatbotService) loadState(ctx context.Context, req chatbot.ChatMessageRequest) (entity.Conversation, entity.VisitorProfile, []entity.Message, error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		return entity.Conversation{}, entity.VisitorProfile{}, nil, err
	}

	var conversation entity.Conversation
	found := false

	if req.ConversationID != "" {
		if cached, cacheErr := s.cachedConversation(ctx, req.ConversationID); cacheErr == nil {
			conversation = cached
			found = true
		} else {
			conversation, err = client.Conversations.GetConversationByID(ctx, req.ConversationID)
			if err == nil {
				found = true
			} else if !errors.Is(err, chatbot.ErrConversationNotFound) {
				return entity.Conversation{}, entity.VisitorProfile{}, nil, err
			}
		}
	}

	if !found {
		id, idErr := s.utils.NewULIDFromTimestamp(time.Now())
		if idErr != nil {
			return entity.Conversation{}, entity.VisitorProfile{}, nil, idErr
		}

		now := time.Now()
		conversation = entity.Conversation{
			ID:        id,
			VisitorID: req.VisitorID,
			StartedAt: now,
			UpdatedAt: now,
		}
		if err := client.Conversations.CreateConversation(ctx, conversation); err != nil {
			return entity.Conversation{}, entity.VisitorProfile{}, nil, err
		}
	}

	history, err := client.Conversations.GetMessagesByConversation(ctx, conversation.ID, historyLimit)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to load message history, continuing without it")
		history = nil
	}

	profile, err := client.Conversations.GetVisitorProfile(ctx, req.VisitorID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to load visitor profile, continuing without it")
		}
		profile = entity.VisitorProfile{
			ID:        req.VisitorID,
			CreatedAt: time.Now(),
		}
	} else {
		profile.IsReturning = true
	}

	return conversation, profile, history, nil
}

func (s *chatbotService) cachedConversation(ctx context.Context, conversationID string) (entity.Conversation, error) {
	payload, err := s.redis.GetConversationState(ctx, conversationID)
	if err != nil {
		return entity.Conversation{}, err
	}

	var conversation entity.Conversation
	if err := jsoniter.UnmarshalFromString(payload, &conversation); err != nil {
		return entity.Conversation{}, err
	}
	if conversation.ID == "" {
		return entity.Conversation{}, redisPkg.Nil
	}

	return conversation, nil
}

// persistTurnState applies the turn's counter bumps, set-once disclosures and
// matched buying signals, mirroring each change on the in-memory copy. Every
// write is best-effort: a failed write degrades scoring, not the reply.
func (s *chatbotService) persistTurnState(
	ctx context.Context,
	conversation *entity.Conversation,
	req chatbot.ChatMessageRequest,
	classification chatbot.ClassificationResult,
	score entity.QualificationScore,
) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Could not open storage client for turn state")
		return
	}

	questionAsked := strings.Contains(req.Message, "?")
	objection := strings.Contains(classification.Intent, "objection")

	if err := client.Conversations.TouchConversation(ctx, conversation.ID, questionAsked, objection); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to bump conversation counters")
	}
	conversation.MessageCount++
	if questionAsked {
		conversation.QuestionCount++
	}
	if objection {
		conversation.ObjectionCount++
	}

	disclosures := extractDisclosures(req.Message)
	if disclosures.DisclosureCount() > 0 {
		disclosures.ID = conversation.ID
		if err := client.Conversations.SetDisclosures(ctx, disclosures); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to persist disclosures")
		}
		mergeDisclosures(conversation, disclosures)
	}

	if len(score.MatchedPatterns) > 0 || req.PageURL != "" {
		if err := client.Conversations.AppendSignals(ctx, conversation.ID, score.MatchedPatterns, req.PageURL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to persist buying signals")
		}
		conversation.MatchedSignals = append(conversation.MatchedSignals, score.MatchedPatterns...)
		if req.PageURL != "" && !containsString(conversation.PagesVisited, req.PageURL) {
			conversation.PagesVisited = append(conversation.PagesVisited, req.PageURL)
		}
	}

	if err := client.Conversations.SetLeadScore(ctx, conversation.ID, score.Total); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to persist lead score")
	}
	conversation.LastLeadScore = score.Total
	conversation.UpdatedAt = time.Now()
}

func (s *chatbotService) recordTurn(
	ctx context.Context,
	conversation entity.Conversation,
	message, reply string,
	classification chatbot.ClassificationResult,
	variantID string,
) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Could not open storage client for transcript")
		return
	}

	now := time.Now()
	turns := []entity.Message{
		{
			ConversationID: conversation.ID,
			Role:           entity.RoleVisitor,
			Content:        message,
			Intent:         classification.Intent,
			Confidence:     classification.Confidence,
			CreatedAt:      now,
		},
		{
			ConversationID: conversation.ID,
			Role:           entity.RoleBot,
			Content:        reply,
			Intent:         classification.Intent,
			VariantID:      variantID,
			CreatedAt:      now.Add(time.Millisecond),
		},
	}

	for _, turn := range turns {
		id, idErr := s.utils.NewULIDFromTimestamp(turn.CreatedAt)
		if idErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      idErr.Error(),
			}).Warn("Failed to generate message id")
			continue
		}
		turn.ID = id

		if err := client.Conversations.CreateMessage(ctx, turn); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to persist transcript turn")
		}
	}
}

// trackPreviousVariant attributes the visitor's reply to the variant served
// on the previous bot turn. Runs detached so experiment bookkeeping never
// delays the response.
func (s *chatbotService) trackPreviousVariant(
	ctx context.Context,
	conversation entity.Conversation,
	history []entity.Message,
	message string,
	score entity.QualificationScore,
	prevScore float64,
) {
	variantID := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == entity.RoleBot {
			variantID = history[i].VariantID
			break
		}
	}
	if variantID == "" {
		return
	}

	event := experiment.InteractionEvent{
		VariantID:      variantID,
		ConversationID: conversation.ID,
		Responded:      true,
		Positive:       s.optimization.IsPositiveResponse(message),
		Converted:      score.Total >= escalationScore,
		ScoreDelta:     score.Total - prevScore,
		HasScoreDelta:  true,
	}

	detached := contextPkg.Detach(ctx)
	go func() {
		if err := s.optimization.TrackInteraction(detached, event); err != nil {
			s.log.WithFields(logrus.Fields{
				"variant_id": event.VariantID,
				"error":      err.Error(),
			}).Warn("Failed to track variant interaction")
		}
	}()
}

func (s *chatbotService) shouldEscalate(
	conversation entity.Conversation,
	classification chatbot.ClassificationResult,
	score entity.QualificationScore,
	message string,
) (string, bool) {
	switch {
	case score.Total > escalationScore:
		return escalationReasonScore, true
	case classification.Intent == entity.IntentHighValueRequest:
		return escalationReasonHighValue, true
	case classification.ActionType == entity.ActionTypeEscalate || humanRequestPattern.MatchString(message):
		return escalationReasonHuman, true
	case classification.Confidence < escalationMinConfidence:
		return escalationReasonConfidence, true
	case conversation.ObjectionCount > escalationMaxObjections:
		return escalationReasonObjections, true
	default:
		return "", false
	}
}

// escalate marks the conversation handed off, writes the escalation record
// and fans out the notifications off the request path.
func (s *chatbotService) escalate(
	ctx context.Context,
	conversation entity.Conversation,
	profile entity.VisitorProfile,
	classification chatbot.ClassificationResult,
	score entity.QualificationScore,
	message, reply, reason string,
	history []entity.Message,
) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Could not open storage client for escalation")
		return
	}

	if err := client.Conversations.MarkEscalated(ctx, conversation.ID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to mark conversation escalated")
	}

	escalationID, idErr := s.utils.NewULIDFromTimestamp(time.Now())
	if idErr == nil {
		record := entity.Escalation{
			ID:             escalationID,
			ConversationID: conversation.ID,
			Reason:         reason,
			LeadScore:      score.Total,
			CreatedAt:      time.Now(),
		}
		if err := client.Reviews.CreateEscalation(ctx, record); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to persist escalation record")
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id":      requestID,
		"conversation_id": conversation.ID,
		"reason":          reason,
		"lead_score":      score.Total,
	}).Info("Conversation escalated to sales team")

	detached := contextPkg.Detach(ctx)
	go s.fanOutEscalation(detached, conversation, profile, classification, score, message, reply, reason, history)
}

func (s *chatbotService) fanOutEscalation(
	ctx context.Context,
	conversation entity.Conversation,
	profile entity.VisitorProfile,
	classification chatbot.ClassificationResult,
	score entity.QualificationScore,
	message, reply, reason string,
	history []entity.Message,
) {
	if s.notifier != nil && s.notifier.Enabled() {
		event := webhook.EscalationEvent{
			ConversationID: conversation.ID,
			VisitorID:      conversation.VisitorID,
			Intent:         classification.Intent,
			Score:          score.Total,
			Reason:         reason,
			Message:        message,
			OccurredAt:     time.Now().Format(time.RFC3339),
		}
		if err := s.notifier.NotifyEscalation(ctx, event); err != nil {
			s.log.WithFields(logrus.Fields{
				"conversation_id": conversation.ID,
				"error":           err.Error(),
			}).Warn("Escalation webhook failed")
		}
	}

	transcript := buildTranscript(history, message, reply)

	if s.mailer != nil {
		if err := s.mailer.SendEscalationMail(conversation.ID, score.Total, reason, transcript); err != nil {
			s.log.WithFields(logrus.Fields{
				"conversation_id": conversation.ID,
				"error":           err.Error(),
			}).Warn("Escalation mail failed")
		}
	}

	if s.operatorBridge != nil {
		if !s.operatorBridge.IsConnected() {
			if err := s.operatorBridge.Reconnect(); err != nil {
				s.log.WithFields(logrus.Fields{
					"conversation_id": conversation.ID,
					"error":           err.Error(),
				}).Warn("Operator console reconnect failed")
			}
		}
		payload := websocketPkg.OperatorPayload{
			ConversationID: conversation.ID,
			VisitorID:      conversation.VisitorID,
			Message:        message,
			BotDraft:       reply,
			Intent:         classification.Intent,
			Score:          score.Total,
			Reason:         reason,
		}
		if err := s.operatorBridge.PushEscalation(payload); err != nil {
			s.log.WithFields(logrus.Fields{
				"conversation_id": conversation.ID,
				"error":           err.Error(),
			}).Warn("Operator console push failed")
		}
	}

	if s.s3Client != nil {
		s.archiveConversation(conversation, profile, score, history, message, reply)
	}
}

func (s *chatbotService) archiveConversation(
	conversation entity.Conversation,
	profile entity.VisitorProfile,
	score entity.QualificationScore,
	history []entity.Message,
	message, reply string,
) {
	turns := make([]s3.MessageTurn, 0, len(history)+2)
	variants := make([]string, 0, 4)
	for _, m := range history {
		turns = append(turns, s3.MessageTurn{
			Role:      m.Role,
			Content:   m.Content,
			Intent:    m.Intent,
			Timestamp: m.CreatedAt,
		})
		if m.VariantID != "" && !containsString(variants, m.VariantID) {
			variants = append(variants, m.VariantID)
		}
	}
	now := time.Now()
	turns = append(turns,
		s3.MessageTurn{Role: entity.RoleVisitor, Content: message, Timestamp: now},
		s3.MessageTurn{Role: entity.RoleBot, Content: reply, Timestamp: now},
	)

	record := s3.ConversationRecord{
		Version:        "1",
		ConversationID: conversation.ID,
		VisitorID:      conversation.VisitorID,
		ArchivedAt:     now,
		MessageCount:   len(turns),
		Outcome:        "escalated",
		LeadScore:      score.Total,
		ServedVariants: variants,
		Messages:       turns,
	}

	location, err := s.s3Client.ArchiveConversation(record)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"conversation_id": conversation.ID,
			"error":           err.Error(),
		}).Warn("Transcript archive failed")
		return
	}

	s.log.WithFields(logrus.Fields{
		"conversation_id": conversation.ID,
		"location":        location,
		"visitor_id":      profile.ID,
	}).Info("Transcript archived")
}

// finishTurn refreshes the Redis state cache and the visitor profile. Both
// are best-effort.
func (s *chatbotService) finishTurn(ctx context.Context, conversation entity.Conversation, profile entity.VisitorProfile) {
	requestID := contextPkg.GetRequestID(ctx)

	if payload, err := jsoniter.MarshalToString(conversation); err == nil {
		if err := s.redis.SetConversationState(ctx, conversation.ID, payload, conversationCacheTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to cache conversation state")
		}
	}

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		return
	}

	profile.LastSeenAt = time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.LastSeenAt
	}
	if err := client.Conversations.UpsertVisitorProfile(ctx, profile); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to upsert visitor profile")
	}
}

func (s *chatbotService) queueReview(ctx context.Context, item entity.ReviewQueueItem) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Could not open storage client for review queue")
		return
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to generate review id")
		return
	}

	item.ID = id
	item.Status = entity.ReviewStatusPending
	item.CreatedAt = time.Now()

	if err := client.Reviews.CreateReviewItem(ctx, item); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to enqueue review item")
	}
}

func extractDisclosures(message string) entity.Conversation {
	var disclosed entity.Conversation

	if m := companyPattern.FindStringSubmatch(message); len(m) > 1 {
		disclosed.CompanyName = strings.TrimSpace(m[1])
	}
	if m := budgetPattern.FindStringSubmatch(message); len(m) > 1 {
		disclosed.BudgetIdentified = strings.TrimSpace(m[1])
	}
	if m := timelinePattern.FindStringSubmatch(message); len(m) > 1 {
		disclosed.Timeline = strings.TrimSpace(m[1])
	}
	if m := useCasePattern.FindStringSubmatch(message); len(m) > 1 {
		disclosed.UseCase = strings.TrimSpace(m[1])
	}
	if m := authorityPattern.FindStringSubmatch(message); len(m) > 1 {
		disclosed.AuthorityLevel = strings.TrimSpace(m[1])
	}

	return disclosed
}

func mergeDisclosures(conversation *entity.Conversation, disclosed entity.Conversation) {
	if conversation.CompanyName == "" {
		conversation.CompanyName = disclosed.CompanyName
	}
	if conversation.BudgetIdentified == "" {
		conversation.BudgetIdentified = disclosed.BudgetIdentified
	}
	if conversation.Timeline == "" {
		conversation.Timeline = disclosed.Timeline
	}
	if conversation.UseCase == "" {
		conversation.UseCase = disclosed.UseCase
	}
	if conversation.AuthorityLevel == "" {
		conversation.AuthorityLevel = disclosed.AuthorityLevel
	}
}

func quickActions(recommendation string) []string {
	switch recommendation {
	case entity.RecommendationImmediateHandoff:
		return []string{"Talk to sales", "Book a demo"}
	case entity.RecommendationContinueBot:
		return []string{"Book a demo", "See pricing"}
	case entity.RecommendationNurture:
		return []string{"See pricing", "Get the newsletter"}
	default:
		return []string{"Browse the docs", "See case studies"}
	}
}

func buildTranscript(history []entity.Message, message, reply string) string {
	var b strings.Builder
	for _, m := range history {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString(entity.RoleVisitor + ": " + message + "\n")
	b.WriteString(entity.RoleBot + ": " + reply + "\n")
	return b.String()
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
