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
	"github.com/sirupsen/logrus"
)

type ReviewQueueItemDB struct {
	ID                sql.NullString  `db:"id"`
	ConversationID    sql.NullString  `db:"conversation_id"`
	VisitorMessage    sql.NullString  `db:"visitor_message"`
	BotResponse       sql.NullString  `db:"bot_response"`
	DetectedIntent    sql.NullString  `db:"detected_intent"`
	Confidence        sql.NullFloat64 `db:"confidence"`
	Reason            sql.NullString  `db:"reason"`
	Status            sql.NullString  `db:"status"`
	CorrectedIntent   sql.NullString  `db:"corrected_intent"`
	CorrectedResponse sql.NullString  `db:"corrected_response"`
	ReviewedBy        sql.NullString  `db:"reviewed_by"`
	ReviewedAt        sql.NullTime    `db:"reviewed_at"`
	CreatedAt         time.Time       `db:"created_at"`
}

func (r *reviewsRepository) CreateReviewItem(ctx context.Context, item entity.ReviewQueueItem) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":                 item.ID,
		"conversation_id":    item.ConversationID,
		"visitor_message":    item.VisitorMessage,
		"bot_response":       item.BotResponse,
		"detected_intent":    item.DetectedIntent,
		"confidence":         item.Confidence,
		"reason":             item.Reason,
		"status":             item.Status,
		"corrected_intent":   item.CorrectedIntent,
		"corrected_response": item.CorrectedResponse,
		"reviewed_by":        item.ReviewedBy,
		"created_at":         item.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateReviewItem, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateReviewItem named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating review item")
		return err
	}

	return nil
}

func (r *reviewsRepository) GetPendingReviews(ctx context.Context, limit, offset int) ([]entity.ReviewQueueItem, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []ReviewQueueItemDB
	var total int

	countArgsKV := map[string]interface{}{
		"status": entity.ReviewStatusPending,
	}

	countQuery, countArgs, err := sqlx.Named(queryCountPendingReviews, countArgsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountPendingReviews named query preparation err")
		return nil, 0, err
	}

	countQuery = r.q.Rebind(countQuery)

	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountPendingReviews execution err")
		return nil, 0, err
	}

	argsKV := map[string]interface{}{
		"status": entity.ReviewStatusPending,
		"limit":  limit,
		"offset": offset,
	}

	query, args, err := sqlx.Named(queryGetPendingReviews, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPendingReviews named query preparation err")
		return nil, 0, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPendingReviews execution err")
		return nil, 0, err
	}

	items := make([]entity.ReviewQueueItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, r.makeReviewQueueItem(row))
	}

	return items, total, nil
}

func (r *reviewsRepository) GetReviewByID(ctx context.Context, id string) (entity.ReviewQueueItem, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row ReviewQueueItemDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetReviewByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetReviewByID named query preparation err")
		return entity.ReviewQueueItem{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("GetReviewByID no rows found")
			return entity.ReviewQueueItem{}, chatbot.ErrReviewItemNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetReviewByID execution err")
		return entity.ReviewQueueItem{}, err
	}

	return r.makeReviewQueueItem(row), nil
}

func (r *reviewsRepository) UpdateReview(ctx context.Context, item entity.ReviewQueueItem) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":                 item.ID,
		"status":             item.Status,
		"corrected_intent":   item.CorrectedIntent,
		"corrected_response": item.CorrectedResponse,
		"reviewed_by":        item.ReviewedBy,
		"reviewed_at":        time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateReview, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateReview named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateReview execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateReview rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         item.ID,
		}).Warn("UpdateReview no rows affected")
		return chatbot.ErrReviewAlreadyDone
	}

	return nil
}

func (r *reviewsRepository) CreateEscalation(ctx context.Context, escalation entity.Escalation) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":              escalation.ID,
		"conversation_id": escalation.ConversationID,
		"reason":          escalation.Reason,
		"lead_score":      escalation.LeadScore,
		"created_at":      escalation.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateEscalation, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateEscalation named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating escalation")
		return err
	}

	return nil
}

func (r *reviewsRepository) makeReviewQueueItem(row ReviewQueueItemDB) entity.ReviewQueueItem {
	item := entity.ReviewQueueItem{
		ID:                row.ID.String,
		ConversationID:    row.ConversationID.String,
		VisitorMessage:    row.VisitorMessage.String,
		BotResponse:       row.BotResponse.String,
		DetectedIntent:    row.DetectedIntent.String,
		Confidence:        row.Confidence.Float64,
		Reason:            row.Reason.String,
		Status:            row.Status.String,
		CorrectedIntent:   row.CorrectedIntent.String,
		CorrectedResponse: row.CorrectedResponse.String,
		ReviewedBy:        row.ReviewedBy.String,
		CreatedAt:         row.CreatedAt,
	}

	if row.ReviewedAt.Valid {
		reviewedAt := row.ReviewedAt.Time
		item.ReviewedAt = &reviewedAt
	}

	return item
}
