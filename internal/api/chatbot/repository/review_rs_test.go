package chatbotRepository

import (
	"LeadPilot/internal/api/chatbot"
	"LeadPilot/internal/entity"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviewsRepo(t *testing.T) (*reviewsRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	return &reviewsRepository{q: sqlxDB, log: logrus.New()}, mock
}

func TestGetPendingReviews_MapsRows(t *testing.T) {
	repo, mock := setupReviewsRepo(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs(entity.ReviewStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "conversation_id", "visitor_message", "bot_response",
		"detected_intent", "confidence", "reason", "status",
		"corrected_intent", "corrected_response", "reviewed_by", "reviewed_at",
		"created_at",
	}).AddRow(
		"rev-1", "conv-1", "gibberish input", "Which plan size are you interested in?",
		entity.IntentUnknown, 0.15, entity.ReviewReasonLowConfidence, entity.ReviewStatusPending,
		"", "", "", nil,
		now,
	)

	mock.ExpectQuery(`FROM review_queue`).
		WillReturnRows(rows)

	items, total, err := repo.GetPendingReviews(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "rev-1", items[0].ID)
	assert.Equal(t, entity.ReviewReasonLowConfidence, items[0].Reason)
	assert.Nil(t, items[0].ReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReview_AlreadyReviewed(t *testing.T) {
	repo, mock := setupReviewsRepo(t)

	mock.ExpectExec(`UPDATE review_queue`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateReview(context.Background(), entity.ReviewQueueItem{
		ID:     "rev-1",
		Status: entity.ReviewStatusReviewed,
	})
	assert.ErrorIs(t, err, chatbot.ErrReviewAlreadyDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReview_ClosesPendingItem(t *testing.T) {
	repo, mock := setupReviewsRepo(t)

	mock.ExpectExec(`UPDATE review_queue`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateReview(context.Background(), entity.ReviewQueueItem{
		ID:                "rev-1",
		Status:            entity.ReviewStatusReviewed,
		CorrectedIntent:   "pricing_inquiry",
		CorrectedResponse: "Our plans start at $99.",
		ReviewedBy:        "ops@example.com",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
