package chatbotService

import (
	"LeadPilot/internal/api/chatbot"
	chatbotRepository "LeadPilot/internal/api/chatbot/repository"
	"LeadPilot/internal/api/experiment"
	"LeadPilot/internal/entity"
	openaiPkg "LeadPilot/pkg/openai"
	redisPkg "LeadPilot/pkg/redis"
	"LeadPilot/pkg/s3"
	"LeadPilot/pkg/webhook"
	websocketPkg "LeadPilot/pkg/websocket"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeIntentStore struct {
	patterns []entity.IntentPattern
	err      error
}

func (f *fakeIntentStore) GetActivePatterns(_ context.Context) ([]entity.IntentPattern, error) {
	return f.patterns, f.err
}

type fakeKnowledgeStore struct {
	items []entity.KnowledgeItem
	err   error
}

func (f *fakeKnowledgeStore) GetActiveByType(_ context.Context, itemType string) ([]entity.KnowledgeItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.KnowledgeItem
	for _, item := range f.items {
		if item.Type == itemType {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeKnowledgeStore) GetByTags(_ context.Context, tags []string, limit int) ([]entity.KnowledgeItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.KnowledgeItem
	for _, item := range f.items {
		for _, tag := range item.Tags {
			matched := false
			for _, want := range tags {
				if tag == want {
					out = append(out, item)
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeTemplateStore struct {
	templates []entity.ResponseTemplate
	err       error
}

func (f *fakeTemplateStore) GetActiveTemplates(_ context.Context) ([]entity.ResponseTemplate, error) {
	return f.templates, f.err
}

type fakeConversationStore struct {
	mu             sync.Mutex
	conversations  map[string]*entity.Conversation
	messages       map[string][]entity.Message
	profiles       map[string]entity.VisitorProfile
	escalatedCalls int
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]entity.Message),
		profiles:      make(map[string]entity.VisitorProfile),
	}
}

func (f *fakeConversationStore) CreateConversation(_ context.Context, conversation entity.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := conversation
	f.conversations[c.ID] = &c
	return nil
}

func (f *fakeConversationStore) GetConversationByID(_ context.Context, id string) (entity.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.conversations[id]; ok {
		return *c, nil
	}
	return entity.Conversation{}, chatbot.ErrConversationNotFound
}

func (f *fakeConversationStore) TouchConversation(_ context.Context, id string, questionAsked, objection bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return chatbot.ErrConversationNotFound
	}
	c.MessageCount++
	if questionAsked {
		c.QuestionCount++
	}
	if objection {
		c.ObjectionCount++
	}
	return nil
}

func (f *fakeConversationStore) SetDisclosures(_ context.Context, conversation entity.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[conversation.ID]
	if !ok {
		return chatbot.ErrConversationNotFound
	}
	mergeDisclosures(c, conversation)
	return nil
}

func (f *fakeConversationStore) AppendSignals(_ context.Context, id string, signals []string, pageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return chatbot.ErrConversationNotFound
	}
	for _, signal := range signals {
		if !containsString(c.MatchedSignals, signal) {
			c.MatchedSignals = append(c.MatchedSignals, signal)
		}
	}
	if pageURL != "" && !containsString(c.PagesVisited, pageURL) {
		c.PagesVisited = append(c.PagesVisited, pageURL)
	}
	return nil
}

func (f *fakeConversationStore) SetLeadScore(_ context.Context, id string, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.conversations[id]; ok {
		c.LastLeadScore = score
	}
	return nil
}

func (f *fakeConversationStore) MarkEscalated(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return chatbot.ErrConversationNotFound
	}
	if c.EscalatedAt == nil {
		now := time.Now()
		c.EscalatedAt = &now
		f.escalatedCalls++
	}
	return nil
}

func (f *fakeConversationStore) CreateMessage(_ context.Context, message entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[message.ConversationID] = append(f.messages[message.ConversationID], message)
	return nil
}

func (f *fakeConversationStore) GetMessagesByConversation(_ context.Context, conversationID string, limit int) ([]entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := f.messages[conversationID]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]entity.Message, len(history))
	copy(out, history)
	return out, nil
}

func (f *fakeConversationStore) GetVisitorProfile(_ context.Context, visitorID string) (entity.VisitorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[visitorID]; ok {
		return p, nil
	}
	return entity.VisitorProfile{}, sql.ErrNoRows
}

func (f *fakeConversationStore) UpsertVisitorProfile(_ context.Context, profile entity.VisitorProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.ID] = profile
	return nil
}

type fakeReviewStore struct {
	mu          sync.Mutex
	items       map[string]entity.ReviewQueueItem
	escalations []entity.Escalation
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{items: make(map[string]entity.ReviewQueueItem)}
}

func (f *fakeReviewStore) CreateReviewItem(_ context.Context, item entity.ReviewQueueItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.ID] = item
	return nil
}

func (f *fakeReviewStore) GetPendingReviews(_ context.Context, limit, offset int) ([]entity.ReviewQueueItem, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []entity.ReviewQueueItem
	for _, item := range f.items {
		if item.Status == entity.ReviewStatusPending {
			pending = append(pending, item)
		}
	}
	total := len(pending)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return pending[offset:end], total, nil
}

func (f *fakeReviewStore) GetReviewByID(_ context.Context, id string) (entity.ReviewQueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return entity.ReviewQueueItem{}, chatbot.ErrReviewItemNotFound
	}
	return item, nil
}

func (f *fakeReviewStore) UpdateReview(_ context.Context, item entity.ReviewQueueItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.items[item.ID]
	if !ok || stored.Status != entity.ReviewStatusPending {
		return chatbot.ErrReviewAlreadyDone
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeReviewStore) CreateEscalation(_ context.Context, escalation entity.Escalation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.escalations = append(f.escalations, escalation)
	return nil
}

func (f *fakeReviewStore) pendingWithReason(reason string) []entity.ReviewQueueItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.ReviewQueueItem
	for _, item := range f.items {
		if item.Reason == reason {
			out = append(out, item)
		}
	}
	return out
}

type fakeChatbotRepo struct {
	intents       *fakeIntentStore
	knowledge     *fakeKnowledgeStore
	templates     *fakeTemplateStore
	conversations *fakeConversationStore
	reviews       *fakeReviewStore
	err           error
}

func newFakeChatbotRepo() *fakeChatbotRepo {
	return &fakeChatbotRepo{
		intents:       &fakeIntentStore{},
		knowledge:     &fakeKnowledgeStore{},
		templates:     &fakeTemplateStore{},
		conversations: newFakeConversationStore(),
		reviews:       newFakeReviewStore(),
	}
}

func (f *fakeChatbotRepo) NewClient(_ bool) (chatbotRepository.Client, error) {
	if f.err != nil {
		return chatbotRepository.Client{}, f.err
	}
	return chatbotRepository.Client{
		Intents:       f.intents,
		Knowledge:     f.knowledge,
		Templates:     f.templates,
		Conversations: f.conversations,
		Reviews:       f.reviews,
		Commit:        func() error { return nil },
		Rollback:      func() error { return nil },
	}, nil
}

type fakeStateCache struct {
	mu       sync.Mutex
	state    map[string]string
	versions map[string]string
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{
		state:    make(map[string]string),
		versions: make(map[string]string),
	}
}

func (f *fakeStateCache) SetConversationState(_ context.Context, conversationID, payload string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[conversationID] = payload
	return nil
}

func (f *fakeStateCache) GetConversationState(_ context.Context, conversationID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.state[conversationID]
	if !ok {
		return "", redisPkg.Nil
	}
	return payload, nil
}

func (f *fakeStateCache) DeleteConversationState(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, conversationID)
	return nil
}

func (f *fakeStateCache) SetSnapshotVersion(_ context.Context, name, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[name] = version
	return nil
}

func (f *fakeStateCache) GetSnapshotVersion(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	version, ok := f.versions[name]
	if !ok {
		return "", redisPkg.Nil
	}
	return version, nil
}

type fakeCompleter struct {
	enabled bool
	reply   string
	err     error

	systemPrompt string
	opts         openaiPkg.CompletionOptions
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, _ string, opts openaiPkg.CompletionOptions) (string, error) {
	f.systemPrompt = systemPrompt
	f.opts = opts
	return f.reply, f.err
}

func (f *fakeCompleter) Enabled() bool { return f.enabled }
func (f *fakeCompleter) Name() string  { return "fake" }

type fakeMailer struct {
	mu   sync.Mutex
	sent int
}

func (f *fakeMailer) SendEscalationMail(_ string, _ float64, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	enabled bool
	events  []webhook.EscalationEvent
}

func (f *fakeNotifier) NotifyEscalation(_ context.Context, event webhook.EscalationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeNotifier) Enabled() bool { return f.enabled }

type fakeOperatorBridge struct {
	mu           sync.Mutex
	payloads     []websocketPkg.OperatorPayload
	disconnected bool
	reconnects   int
}

func (f *fakeOperatorBridge) PushEscalation(payload websocketPkg.OperatorPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeOperatorBridge) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.disconnected
}

func (f *fakeOperatorBridge) Reconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = false
	f.reconnects++
	return nil
}

func (f *fakeOperatorBridge) Close() {}

type fakeArchiver struct {
	mu      sync.Mutex
	records []s3.ConversationRecord
}

func (f *fakeArchiver) ArchiveConversation(record s3.ConversationRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return "s3://archive/" + record.ConversationID, nil
}

type fakeIDSource struct {
	mu  sync.Mutex
	seq int
}

func (f *fakeIDSource) NewULIDFromTimestamp(_ time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return fmt.Sprintf("test-id-%03d", f.seq), nil
}

type fakePersonalization struct {
	panicOnCall bool
	prefix      string
}

func (f *fakePersonalization) Personalize(_ context.Context, in experiment.PersonalizeInput) (experiment.PersonalizeResult, error) {
	if f.panicOnCall {
		panic("personalization exploded")
	}
	return experiment.PersonalizeResult{
		Text:        f.prefix + in.BaseText,
		Stage:       entity.StageAwareness,
		Personality: entity.PersonalityAmiable,
	}, nil
}

func (f *fakePersonalization) DetectPersonality(_ []entity.Message) string { return entity.PersonalityAmiable }
func (f *fakePersonalization) DetermineStage(_ float64) string             { return entity.StageAwareness }

type fakeOptimization struct {
	mu     sync.Mutex
	events []experiment.InteractionEvent
}

func (f *fakeOptimization) TrackInteraction(_ context.Context, event experiment.InteractionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOptimization) IsPositiveResponse(message string) bool {
	return strings.Contains(strings.ToLower(message), "yes")
}

func (f *fakeOptimization) CheckSignificance(_ context.Context, scenarioKey string) (*experiment.SignificanceResponse, error) {
	return &experiment.SignificanceResponse{ScenarioKey: scenarioKey}, nil
}

func (f *fakeOptimization) StartOptimizationLoop(_ context.Context, _ time.Duration) {}

func (f *fakeOptimization) GetAllVariants(_ context.Context, _, _ int) (*experiment.VariantListResponse, error) {
	return &experiment.VariantListResponse{}, nil
}

func (f *fakeOptimization) GetVariant(_ context.Context, _ string) (*experiment.VariantResponse, error) {
	return &experiment.VariantResponse{}, nil
}

type testServiceOption func(*chatbotService)

func newTestChatbotService(repo *fakeChatbotRepo, opts ...testServiceOption) (*chatbotService, *fakeStateCache) {
	cache := newFakeStateCache()
	s := &chatbotService{
		log:             logrus.New(),
		chatbotRepo:     repo,
		redis:           cache,
		completer:       &fakeCompleter{},
		mailer:          &fakeMailer{},
		notifier:        &fakeNotifier{},
		operatorBridge:  &fakeOperatorBridge{},
		s3Client:        &fakeArchiver{},
		utils:           &fakeIDSource{},
		personalization: &fakePersonalization{},
		optimization:    &fakeOptimization{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, cache
}
