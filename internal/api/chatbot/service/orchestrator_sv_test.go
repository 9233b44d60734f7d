package chatbotService

import (
	"LeadPilot/internal/api/chatbot"
	"LeadPilot/internal/entity"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessage_EmptyMessage(t *testing.T) {
	s, _ := newTestChatbotService(newFakeChatbotRepo())

	_, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "   ",
	})
	assert.ErrorIs(t, err, chatbot.ErrEmptyMessage)
}

func TestHandleMessage_PricingInquiry(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = testIntentPatterns()
	repo.templates.templates = testTemplates()
	repo.knowledge.items = pricingKnowledge()
	s, _ := newTestChatbotService(repo)

	resp, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "How much does it cost? What are your rates?",
		PageURL:   "/pricing",
	})
	require.NoError(t, err)

	assert.Equal(t, "pricing_inquiry", resp.Intent)
	assert.InDelta(t, 0.7, resp.Confidence, 1e-9)
	assert.False(t, resp.Fallback)
	assert.False(t, resp.ReviewQueued)
	assert.Contains(t, resp.Reply, "$99/mo")
	assert.NotEmpty(t, resp.ConversationID)
	assert.NotEmpty(t, resp.QuickActions)

	// Both turns of the exchange land in the transcript.
	history := repo.conversations.messages[resp.ConversationID]
	require.Len(t, history, 2)
	assert.Equal(t, entity.RoleVisitor, history[0].Role)
	assert.Equal(t, entity.RoleBot, history[1].Role)
	assert.Equal(t, "pricing_inquiry", history[0].Intent)

	// The page visit is recorded on the conversation.
	conversation := repo.conversations.conversations[resp.ConversationID]
	assert.Contains(t, conversation.PagesVisited, "/pricing")
	assert.Equal(t, resp.LeadScore, conversation.LastLeadScore)

	// The visitor profile is upserted at the end of the turn.
	_, ok := repo.conversations.profiles["vis-1"]
	assert.True(t, ok)
}

func TestHandleMessage_UnknownIntentQueuesReview(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = testIntentPatterns()
	s, _ := newTestChatbotService(repo)

	resp, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "hello there",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.IntentUnknown, resp.Intent)
	assert.True(t, resp.Fallback)
	assert.True(t, resp.ReviewQueued)
	assert.False(t, resp.Escalated)
	assert.Equal(t, defaultClarification, resp.Reply)

	queued := repo.reviews.pendingWithReason(entity.ReviewReasonLowConfidence)
	require.Len(t, queued, 1)
	assert.Equal(t, "hello there", queued[0].VisitorMessage)
	assert.Equal(t, entity.ReviewStatusPending, queued[0].Status)
}

func TestHandleMessage_HumanRequestEscalatesOnce(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = testIntentPatterns()
	s, _ := newTestChatbotService(repo)

	first, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "I want to talk to a human please",
	})
	require.NoError(t, err)
	assert.True(t, first.Escalated)

	require.Len(t, repo.reviews.escalations, 1)
	assert.Equal(t, escalationReasonHuman, repo.reviews.escalations[0].Reason)
	assert.Equal(t, 1, repo.conversations.escalatedCalls)

	// The next turn in the same conversation does not escalate again.
	second, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		ConversationID: first.ConversationID,
		VisitorID:      "vis-1",
		Message:        "can I speak with a person now",
	})
	require.NoError(t, err)
	assert.False(t, second.Escalated)
	assert.Len(t, repo.reviews.escalations, 1)
	assert.Equal(t, 1, repo.conversations.escalatedCalls)
}

func TestHandleMessage_RepeatedObjectionsEscalate(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = append(testIntentPatterns(), entity.IntentPattern{
		Name:                "pricing_objection",
		Keywords:            []string{"expensive", "too much"},
		Regexes:             []string{`too (pricey|costly)`},
		ConfidenceThreshold: 0.1,
	})
	now := time.Now()
	require.NoError(t, repo.conversations.CreateConversation(context.Background(), entity.Conversation{
		ID:             "conv-obj",
		VisitorID:      "vis-1",
		ObjectionCount: 2,
		MessageCount:   6,
		StartedAt:      now.Add(-20 * time.Minute),
		UpdatedAt:      now,
	}))
	s, _ := newTestChatbotService(repo)

	resp, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		ConversationID: "conv-obj",
		VisitorID:      "vis-1",
		Message:        "that still seems way too expensive, it's too much for us",
	})
	require.NoError(t, err)

	assert.Equal(t, "pricing_objection", resp.Intent)
	assert.True(t, resp.Escalated)
	require.Len(t, repo.reviews.escalations, 1)
	assert.Equal(t, escalationReasonObjections, repo.reviews.escalations[0].Reason)

	conversation := repo.conversations.conversations["conv-obj"]
	assert.Equal(t, 3, conversation.ObjectionCount)
}

func TestHandleMessage_DisclosuresAreCaptured(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = testIntentPatterns()
	s, _ := newTestChatbotService(repo)

	resp, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "I work at Initech, and we need it for invoice automation this quarter",
	})
	require.NoError(t, err)

	conversation := repo.conversations.conversations[resp.ConversationID]
	require.NotNil(t, conversation)
	assert.Equal(t, "Initech", conversation.CompanyName)
	assert.Equal(t, "this quarter", conversation.Timeline)
	assert.NotEmpty(t, conversation.UseCase)
}

func TestHandleMessage_PanicReturnsSafeFallback(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = testIntentPatterns()
	s, _ := newTestChatbotService(repo, func(s *chatbotService) {
		s.personalization = &fakePersonalization{panicOnCall: true}
	})

	resp, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "how much does it cost",
	})
	require.NoError(t, err)

	assert.Equal(t, safeFallbackReply, resp.Reply)
	assert.True(t, resp.Fallback)
	assert.True(t, resp.ReviewQueued)

	queued := repo.reviews.pendingWithReason(entity.ReviewReasonError)
	require.Len(t, queued, 1)
	assert.Equal(t, safeFallbackReply, queued[0].BotResponse)
}

func TestHandleMessage_StorageFailureDegradesGracefully(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.err = assert.AnError
	s, _ := newTestChatbotService(repo)

	resp, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "anything at all",
	})
	require.NoError(t, err)
	assert.Equal(t, safeFallbackReply, resp.Reply)
	assert.True(t, resp.Fallback)
}

func TestHandleMessage_SnapshotUnavailableServesFallbackDraft(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.err = assert.AnError
	s, _ := newTestChatbotService(repo)

	resp, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "tell me about your product",
	})
	require.NoError(t, err)

	assert.Equal(t, defaultClarification, resp.Reply)
	assert.Equal(t, entity.IntentUnknown, resp.Intent)
	assert.True(t, resp.Fallback)
	assert.True(t, resp.ReviewQueued)
}

func TestFanOutEscalation_ReconnectsOperatorConsole(t *testing.T) {
	repo := newFakeChatbotRepo()
	bridge := &fakeOperatorBridge{disconnected: true}
	s, _ := newTestChatbotService(repo, func(s *chatbotService) {
		s.operatorBridge = bridge
	})

	s.fanOutEscalation(context.Background(),
		entity.Conversation{ID: "conv-esc", VisitorID: "vis-1"},
		entity.VisitorProfile{ID: "vis-1"},
		chatbot.ClassificationResult{Intent: "pricing_inquiry", Confidence: 0.8},
		entity.QualificationScore{Total: 85},
		"can someone call me", "Connecting you now.", escalationReasonHuman,
		nil,
	)

	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	assert.Equal(t, 1, bridge.reconnects)
	require.Len(t, bridge.payloads, 1)
	assert.Equal(t, "conv-esc", bridge.payloads[0].ConversationID)
	assert.Equal(t, escalationReasonHuman, bridge.payloads[0].Reason)
}

func TestHandleMessage_TracksPreviousVariant(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = testIntentPatterns()
	now := time.Now()
	require.NoError(t, repo.conversations.CreateConversation(context.Background(), entity.Conversation{
		ID:            "conv-track",
		VisitorID:     "vis-1",
		MessageCount:  2,
		LastLeadScore: 10,
		StartedAt:     now.Add(-5 * time.Minute),
		UpdatedAt:     now,
	}))
	require.NoError(t, repo.conversations.CreateMessage(context.Background(), entity.Message{
		ID:             "msg-1",
		ConversationID: "conv-track",
		Role:           entity.RoleBot,
		Content:        "Our plans start at $99.",
		VariantID:      "var-served",
		CreatedAt:      now.Add(-1 * time.Minute),
	}))
	tracker := &fakeOptimization{}
	s, _ := newTestChatbotService(repo, func(s *chatbotService) {
		s.optimization = tracker
	})

	_, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		ConversationID: "conv-track",
		VisitorID:      "vis-1",
		Message:        "yes, that works for us",
	})
	require.NoError(t, err)

	// The tracking call runs detached from the request.
	assert.Eventually(t, func() bool {
		tracker.mu.Lock()
		defer tracker.mu.Unlock()
		return len(tracker.events) == 1
	}, time.Second, 10*time.Millisecond)

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	event := tracker.events[0]
	assert.Equal(t, "var-served", event.VariantID)
	assert.Equal(t, "conv-track", event.ConversationID)
	assert.True(t, event.Responded)
	assert.True(t, event.Positive)
	assert.True(t, event.HasScoreDelta)
}

func TestHandleMessage_CachedConversationSkipsDatabaseLookup(t *testing.T) {
	repo := newFakeChatbotRepo()
	repo.intents.patterns = testIntentPatterns()
	s, cache := newTestChatbotService(repo)

	first, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		VisitorID: "vis-1",
		Message:   "how much does it cost",
	})
	require.NoError(t, err)

	// The finished turn cached the conversation state.
	payload, err := cache.GetConversationState(context.Background(), first.ConversationID)
	require.NoError(t, err)
	assert.Contains(t, payload, first.ConversationID)

	second, err := s.HandleMessage(context.Background(), chatbot.ChatMessageRequest{
		ConversationID: first.ConversationID,
		VisitorID:      "vis-1",
		Message:        "and what are your rates",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
}
