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

type IntentPatternDB struct {
	ID                  sql.NullString  `db:"id"`
	Name                sql.NullString  `db:"name"`
	Keywords            pq.StringArray  `db:"keywords"`
	Regexes             pq.StringArray  `db:"regexes"`
	ConfidenceThreshold sql.NullFloat64 `db:"confidence_threshold"`
	HighIntent          sql.NullBool    `db:"high_intent"`
	RequiresData        sql.NullBool    `db:"requires_data"`
	ActionType          sql.NullString  `db:"action_type"`
	Priority            sql.NullInt64   `db:"priority"`
	IsActive            sql.NullBool    `db:"is_active"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

func (r *intentsRepository) GetActivePatterns(ctx context.Context) ([]entity.IntentPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []IntentPatternDB

	query, args, err := sqlx.Named(queryGetActivePatterns, map[string]interface{}{})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActivePatterns named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActivePatterns execution err")
		return nil, err
	}

	patterns := make([]entity.IntentPattern, 0, len(rows))
	for _, row := range rows {
		patterns = append(patterns, r.makeIntentPattern(row))
	}

	return patterns, nil
}

func (r *intentsRepository) makeIntentPattern(row IntentPatternDB) entity.IntentPattern {
	return entity.IntentPattern{
		ID:                  row.ID.String,
		Name:                row.Name.String,
		Keywords:            row.Keywords,
		Regexes:             row.Regexes,
		ConfidenceThreshold: row.ConfidenceThreshold.Float64,
		HighIntent:          row.HighIntent.Bool,
		RequiresData:        row.RequiresData.Bool,
		ActionType:          row.ActionType.String,
		Priority:            int(row.Priority.Int64),
		IsActive:            row.IsActive.Bool,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
