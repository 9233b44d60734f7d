package chatbotRepository

import (
	"LeadPilot/internal/api/chatbot"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type ConversationDB struct {
	ID               sql.NullString  `db:"id"`
	VisitorID        sql.NullString  `db:"visitor_id"`
	MessageCount     sql.NullInt64   `db:"message_count"`
	QuestionCount    sql.NullInt64   `db:"question_count"`
	ObjectionCount   sql.NullInt64   `db:"objection_count"`
	CompanyName      sql.NullString  `db:"company_name"`
	BudgetIdentified sql.NullString  `db:"budget_identified"`
	Timeline         sql.NullString  `db:"timeline"`
	UseCase          sql.NullString  `db:"use_case"`
	AuthorityLevel   sql.NullString  `db:"authority_level"`
	MatchedSignals   pq.StringArray  `db:"matched_signals"`
	PagesVisited     pq.StringArray  `db:"pages_visited"`
	LastLeadScore    sql.NullFloat64 `db:"last_lead_score"`
	EscalatedAt      sql.NullTime    `db:"escalated_at"`
	StartedAt        time.Time       `db:"started_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type MessageDB struct {
	ID             sql.NullString  `db:"id"`
	ConversationID sql.NullString  `db:"conversation_id"`
	Role           sql.NullString  `db:"role"`
	Content        sql.NullString  `db:"content"`
	Intent         sql.NullString  `db:"intent"`
	Confidence     sql.NullFloat64 `db:"confidence"`
	VariantID      sql.NullString  `db:"variant_id"`
	CreatedAt      time.Time       `db:"created_at"`
}

type VisitorProfileDB struct {
	ID          sql.NullString `db:"id"`
	Name        sql.NullString `db:"name"`
	Company     sql.NullString `db:"company"`
	Industry    sql.NullString `db:"industry"`
	Personality sql.NullString `db:"personality"`
	IsReturning sql.NullBool   `db:"is_returning"`
	LastSeenAt  time.Time      `db:"last_seen_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *conversationsRepository) CreateConversation(ctx context.Context, conversation entity.Conversation) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":                conversation.ID,
		"visitor_id":        conversation.VisitorID,
		"message_count":     conversation.MessageCount,
		"question_count":    conversation.QuestionCount,
		"objection_count":   conversation.ObjectionCount,
		"company_name":      conversation.CompanyName,
		"budget_identified": conversation.BudgetIdentified,
		"timeline":          conversation.Timeline,
		"use_case":          conversation.UseCase,
		"authority_level":   conversation.AuthorityLevel,
		"matched_signals":   pq.StringArray(conversation.MatchedSignals),
		"pages_visited":     pq.StringArray(conversation.PagesVisited),
		"last_lead_score":   conversation.LastLeadScore,
		"started_at":        conversation.StartedAt,
		"updated_at":        conversation.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateConversation, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateConversation named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating conversation")
		return err
	}

	return nil
}

func (r *conversationsRepository) GetConversationByID(ctx context.Context, id string) (entity.Conversation, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row ConversationDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetConversationByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetConversationByID named query preparation err")
		return entity.Conversation{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("GetConversationByID no rows found")
			return entity.Conversation{}, chatbot.ErrConversationNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetConversationByID execution err")
		return entity.Conversation{}, err
	}

	return r.makeConversation(row), nil
}

func (r *conversationsRepository) TouchConversation(ctx context.Context, id string, questionAsked bool, objection bool) error {
	requestID := contextPkg.GetRequestID(ctx)

	questionDelta := 0
	if questionAsked {
		questionDelta = 1
	}
	objectionDelta := 0
	if objection {
		objectionDelta = 1
	}

	argsKV := map[string]interface{}{
		"id":              id,
		"question_delta":  questionDelta,
		"objection_delta": objectionDelta,
		"updated_at":      time.Now(),
	}

	query, args, err := sqlx.Named(queryTouchConversation, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("TouchConversation named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("TouchConversation execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("TouchConversation rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("TouchConversation no rows affected")
		return chatbot.ErrConversationNotFound
	}

	return nil
}

func (r *conversationsRepository) SetDisclosures(ctx context.Context, conversation entity.Conversation) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":                conversation.ID,
		"company_name":      conversation.CompanyName,
		"budget_identified": conversation.BudgetIdentified,
		"timeline":          conversation.Timeline,
		"use_case":          conversation.UseCase,
		"authority_level":   conversation.AuthorityLevel,
		"updated_at":        time.Now(),
	}

	query, args, err := sqlx.Named(querySetDisclosures, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SetDisclosures named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SetDisclosures execution err")
		return err
	}

	return nil
}

func (r *conversationsRepository) AppendSignals(ctx context.Context, id string, signals []string, pageURL string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":         id,
		"signals":    pq.StringArray(signals),
		"page_url":   pageURL,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryAppendSignals, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("AppendSignals named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("AppendSignals execution err")
		return err
	}

	return nil
}

func (r *conversationsRepository) SetLeadScore(ctx context.Context, id string, score float64) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":         id,
		"score":      score,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(querySetLeadScore, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SetLeadScore named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SetLeadScore execution err")
		return err
	}

	return nil
}

func (r *conversationsRepository) MarkEscalated(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":           id,
		"escalated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryMarkEscalated, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("MarkEscalated named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("MarkEscalated execution err")
		return err
	}

	return nil
}

func (r *conversationsRepository) CreateMessage(ctx context.Context, message entity.Message) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":              message.ID,
		"conversation_id": message.ConversationID,
		"role":            message.Role,
		"content":         message.Content,
		"intent":          message.Intent,
		"confidence":      message.Confidence,
		"variant_id":      message.VariantID,
		"created_at":      message.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateMessage, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateMessage named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating message")
		return err
	}

	return nil
}

func (r *conversationsRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit int) ([]entity.Message, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []MessageDB

	argsKV := map[string]interface{}{
		"conversation_id": conversationID,
		"limit":           limit,
	}

	query, args, err := sqlx.Named(queryGetMessagesByConversation, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMessagesByConversation named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMessagesByConversation execution err")
		return nil, err
	}

	messages := make([]entity.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, r.makeMessage(row))
	}

	return messages, nil
}

func (r *conversationsRepository) GetVisitorProfile(ctx context.Context, visitorID string) (entity.VisitorProfile, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row VisitorProfileDB

	argsKV := map[string]interface{}{
		"id": visitorID,
	}

	query, args, err := sqlx.Named(queryGetVisitorProfile, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVisitorProfile named query preparation err")
		return entity.VisitorProfile{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.VisitorProfile{}, sql.ErrNoRows
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVisitorProfile execution err")
		return entity.VisitorProfile{}, err
	}

	return r.makeVisitorProfile(row), nil
}

func (r *conversationsRepository) UpsertVisitorProfile(ctx context.Context, profile entity.VisitorProfile) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":           profile.ID,
		"name":         profile.Name,
		"company":      profile.Company,
		"industry":     profile.Industry,
		"personality":  profile.Personality,
		"is_returning": profile.IsReturning,
		"last_seen_at": profile.LastSeenAt,
		"created_at":   profile.CreatedAt,
	}

	query, args, err := sqlx.Named(queryUpsertVisitorProfile, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpsertVisitorProfile named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpsertVisitorProfile execution err")
		return err
	}

	return nil
}

func (r *conversationsRepository) makeConversation(row ConversationDB) entity.Conversation {
	conversation := entity.Conversation{
		ID:               row.ID.String,
		VisitorID:        row.VisitorID.String,
		MessageCount:     int(row.MessageCount.Int64),
		QuestionCount:    int(row.QuestionCount.Int64),
		ObjectionCount:   int(row.ObjectionCount.Int64),
		CompanyName:      row.CompanyName.String,
		BudgetIdentified: row.BudgetIdentified.String,
		Timeline:         row.Timeline.String,
		UseCase:          row.UseCase.String,
		AuthorityLevel:   row.AuthorityLevel.String,
		MatchedSignals:   row.MatchedSignals,
		PagesVisited:     row.PagesVisited,
		LastLeadScore:    row.LastLeadScore.Float64,
		StartedAt:        row.StartedAt,
		UpdatedAt:        row.UpdatedAt,
	}

	if row.EscalatedAt.Valid {
		escalatedAt := row.EscalatedAt.Time
		conversation.EscalatedAt = &escalatedAt
	}

	return conversation
}

func (r *conversationsRepository) makeMessage(row MessageDB) entity.Message {
	return entity.Message{
		ID:             row.ID.String,
		ConversationID: row.ConversationID.String,
		Role:           row.Role.String,
		Content:        row.Content.String,
		Intent:         row.Intent.String,
		Confidence:     row.Confidence.Float64,
		VariantID:      row.VariantID.String,
		CreatedAt:      row.CreatedAt,
	}
}

func (r *conversationsRepository) makeVisitorProfile(row VisitorProfileDB) entity.VisitorProfile {
	return entity.VisitorProfile{
		ID:          row.ID.String,
		Name:        row.Name.String,
		Company:     row.Company.String,
		Industry:    row.Industry.String,
		Personality: row.Personality.String,
		IsReturning: row.IsReturning.Bool,
		LastSeenAt:  row.LastSeenAt,
		CreatedAt:   row.CreatedAt,
	}
}
