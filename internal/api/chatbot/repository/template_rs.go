package chatbotRepository

import (
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type ResponseTemplateDB struct {
	ID         sql.NullString `db:"id"`
	IntentName sql.NullString `db:"intent_name"`
	Scenario   sql.NullString `db:"scenario"`
	Template   sql.NullString `db:"template"`
	Variables  pq.StringArray `db:"variables"`
	Priority   sql.NullInt64  `db:"priority"`
	IsActive   sql.NullBool   `db:"is_active"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r *templatesRepository) GetActiveTemplates(ctx context.Context) ([]entity.ResponseTemplate, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []ResponseTemplateDB

	query, args, err := sqlx.Named(queryGetActiveTemplates, map[string]interface{}{})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveTemplates named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveTemplates execution err")
		return nil, err
	}

	templates := make([]entity.ResponseTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, r.makeResponseTemplate(row))
	}

	return templates, nil
}

func (r *templatesRepository) makeResponseTemplate(row ResponseTemplateDB) entity.ResponseTemplate {
	return entity.ResponseTemplate{
		ID:         row.ID.String,
		IntentName: row.IntentName.String,
		Scenario:   row.Scenario.String,
		Template:   row.Template.String,
		Variables:  row.Variables,
		Priority:   int(row.Priority.Int64),
		IsActive:   row.IsActive.Bool,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
