package chatbotRepository

import (
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"
	"database/sql"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type KnowledgeItemDB struct {
	ID        sql.NullString `db:"id"`
	Type      sql.NullString `db:"type"`
	Title     sql.NullString `db:"title"`
	Content   []byte         `db:"content"`
	Tags      pq.StringArray `db:"tags"`
	IsActive  sql.NullBool   `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *knowledgeRepository) GetActiveByType(ctx context.Context, itemType string) ([]entity.KnowledgeItem, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []KnowledgeItemDB

	argsKV := map[string]interface{}{
		"type": itemType,
	}

	query, args, err := sqlx.Named(queryGetKnowledgeByType, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveByType named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveByType execution err")
		return nil, err
	}

	items := make([]entity.KnowledgeItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, r.makeKnowledgeItem(row))
	}

	return items, nil
}

func (r *knowledgeRepository) GetByTags(ctx context.Context, tags []string, limit int) ([]entity.KnowledgeItem, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []KnowledgeItemDB

	argsKV := map[string]interface{}{
		"tags":  pq.StringArray(tags),
		"limit": limit,
	}

	query, args, err := sqlx.Named(queryGetKnowledgeByTags, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByTags named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByTags execution err")
		return nil, err
	}

	items := make([]entity.KnowledgeItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, r.makeKnowledgeItem(row))
	}

	return items, nil
}

func (r *knowledgeRepository) makeKnowledgeItem(row KnowledgeItemDB) entity.KnowledgeItem {
	content := make(map[string]string)
	if len(row.Content) > 0 {
		if err := jsoniter.Unmarshal(row.Content, &content); err != nil {
			r.log.WithFields(logrus.Fields{
				"id":    row.ID.String,
				"error": err.Error(),
			}).Warn("Failed to decode knowledge content payload")
		}
	}

	return entity.KnowledgeItem{
		ID:        row.ID.String,
		Type:      row.Type.String,
		Title:     row.Title.String,
		Content:   content,
		Tags:      row.Tags,
		IsActive:  row.IsActive.Bool,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
