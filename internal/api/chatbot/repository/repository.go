package chatbotRepository

import (
	"LeadPilot/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Intents:       &intentsRepository{q: sqlExecutor, log: r.log},
		Knowledge:     &knowledgeRepository{q: sqlExecutor, log: r.log},
		Templates:     &templatesRepository{q: sqlExecutor, log: r.log},
		Conversations: &conversationsRepository{q: sqlExecutor, log: r.log},
		Reviews:       &reviewsRepository{q: sqlExecutor, log: r.log},
		Commit:        commitFunc,
		Rollback:      rollbackFunc,
	}, nil
}

type Client struct {
	Intents interface {
		GetActivePatterns(ctx context.Context) ([]entity.IntentPattern, error)
	}

	Knowledge interface {
		GetActiveByType(ctx context.Context, itemType string) ([]entity.KnowledgeItem, error)
		GetByTags(ctx context.Context, tags []string, limit int) ([]entity.KnowledgeItem, error)
	}

	Templates interface {
		GetActiveTemplates(ctx context.Context) ([]entity.ResponseTemplate, error)
	}

	Conversations interface {
		CreateConversation(ctx context.Context, conversation entity.Conversation) error
		GetConversationByID(ctx context.Context, id string) (entity.Conversation, error)
		TouchConversation(ctx context.Context, id string, questionAsked bool, objection bool) error
		SetDisclosures(ctx context.Context, conversation entity.Conversation) error
		AppendSignals(ctx context.Context, id string, signals []string, pageURL string) error
		SetLeadScore(ctx context.Context, id string, score float64) error
		MarkEscalated(ctx context.Context, id string) error
		CreateMessage(ctx context.Context, message entity.Message) error
		GetMessagesByConversation(ctx context.Context, conversationID string, limit int) ([]entity.Message, error)
		GetVisitorProfile(ctx context.Context, visitorID string) (entity.VisitorProfile, error)
		UpsertVisitorProfile(ctx context.Context, profile entity.VisitorProfile) error
	}

	Reviews interface {
		CreateReviewItem(ctx context.Context, item entity.ReviewQueueItem) error
		GetPendingReviews(ctx context.Context, limit, offset int) ([]entity.ReviewQueueItem, int, error)
		GetReviewByID(ctx context.Context, id string) (entity.ReviewQueueItem, error)
		UpdateReview(ctx context.Context, item entity.ReviewQueueItem) error
		CreateEscalation(ctx context.Context, escalation entity.Escalation) error
	}

	Commit   func() error
	Rollback func() error
}

type intentsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type knowledgeRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type templatesRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type conversationsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type reviewsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
