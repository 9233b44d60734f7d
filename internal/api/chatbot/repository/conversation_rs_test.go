package chatbotRepository

import (
	"LeadPilot/internal/api/chatbot"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConversationsRepo(t *testing.T) (*conversationsRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlxDB := sqlx.NewDb(db, "postgres")
	return &conversationsRepository{q: sqlxDB, log: logrus.New()}, mock
}

func TestGetConversationByID_MapsRow(t *testing.T) {
	repo, mock := setupConversationsRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "visitor_id", "message_count", "question_count", "objection_count",
		"company_name", "budget_identified", "timeline", "use_case", "authority_level",
		"matched_signals", "pages_visited", "last_lead_score", "escalated_at",
		"started_at", "updated_at",
	}).AddRow(
		"conv-1", "visitor-1", 6, 2, 0,
		"Initech", "approved", "this quarter", "invoice automation", "decision_maker",
		"{decision_maker,budget_holder}", "{/pricing,/demo}", 72.5, nil,
		now, now,
	)

	mock.ExpectQuery(`SELECT .+ FROM conversations`).
		WithArgs("conv-1").
		WillReturnRows(rows)

	conversation, err := repo.GetConversationByID(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conversation.ID)
	assert.Equal(t, 6, conversation.MessageCount)
	assert.Equal(t, "Initech", conversation.CompanyName)
	assert.Equal(t, []string{"decision_maker", "budget_holder"}, conversation.MatchedSignals)
	assert.Equal(t, []string{"/pricing", "/demo"}, conversation.PagesVisited)
	assert.InDelta(t, 72.5, conversation.LastLeadScore, 0.001)
	assert.Nil(t, conversation.EscalatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConversationByID_NoRows(t *testing.T) {
	repo, mock := setupConversationsRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM conversations`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetConversationByID(context.Background(), "missing")
	assert.ErrorIs(t, err, chatbot.ErrConversationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchConversation_IncrementsCounters(t *testing.T) {
	repo, mock := setupConversationsRepo(t)

	mock.ExpectExec(`UPDATE conversations`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.TouchConversation(context.Background(), "conv-1", true, false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTouchConversation_UnknownConversation(t *testing.T) {
	repo, mock := setupConversationsRepo(t)

	mock.ExpectExec(`UPDATE conversations`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.TouchConversation(context.Background(), "missing", false, false)
	assert.ErrorIs(t, err, chatbot.ErrConversationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVisitorProfile_NoRows(t *testing.T) {
	repo, mock := setupConversationsRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM visitor_profiles`).
		WithArgs("visitor-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetVisitorProfile(context.Background(), "visitor-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
