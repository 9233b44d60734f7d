package experimentRepository

import (
	"LeadPilot/internal/api/experiment"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type MessageVariantDB struct {
	ID                sql.NullString  `db:"id"`
	ScenarioKey       sql.NullString  `db:"scenario_key"`
	Name              sql.NullString  `db:"name"`
	Template          sql.NullString  `db:"template"`
	TimesShown        sql.NullInt64   `db:"times_shown"`
	ResponsesReceived sql.NullInt64   `db:"responses_received"`
	PositiveResponses sql.NullInt64   `db:"positive_responses"`
	Conversions       sql.NullInt64   `db:"conversions"`
	AvgScoreDelta     sql.NullFloat64 `db:"avg_score_delta"`
	IsControl         sql.NullBool    `db:"is_control"`
	IsWinner          sql.NullBool    `db:"is_winner"`
	ConfidenceLevel   sql.NullFloat64 `db:"confidence_level"`
	IsActive          sql.NullBool    `db:"is_active"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r *variantsRepository) CreateVariant(ctx context.Context, variant entity.MessageVariant) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":                 variant.ID,
		"scenario_key":       variant.ScenarioKey,
		"name":               variant.Name,
		"template":           variant.Template,
		"times_shown":        variant.TimesShown,
		"responses_received": variant.ResponsesReceived,
		"positive_responses": variant.PositiveResponses,
		"conversions":        variant.Conversions,
		"avg_score_delta":    variant.AvgScoreDelta,
		"is_control":         variant.IsControl,
		"is_winner":          variant.IsWinner,
		"confidence_level":   variant.ConfidenceLevel,
		"is_active":          variant.IsActive,
		"created_at":         variant.CreatedAt,
		"updated_at":         variant.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateVariant, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateVariant named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating variant")
		return err
	}

	return nil
}

func (r *variantsRepository) GetVariantByID(ctx context.Context, id string) (entity.MessageVariant, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row MessageVariantDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetVariantByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVariantByID named query preparation err")
		return entity.MessageVariant{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("GetVariantByID no rows found")
			return entity.MessageVariant{}, experiment.ErrVariantNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetVariantByID execution err")
		return entity.MessageVariant{}, err
	}

	return r.makeMessageVariant(row), nil
}

func (r *variantsRepository) GetActiveByScenario(ctx context.Context, scenarioKey string) ([]entity.MessageVariant, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []MessageVariantDB

	argsKV := map[string]interface{}{
		"scenario_key": scenarioKey,
	}

	query, args, err := sqlx.Named(queryGetActiveByScenario, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveByScenario named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveByScenario execution err")
		return nil, err
	}

	variants := make([]entity.MessageVariant, 0, len(rows))
	for _, row := range rows {
		variants = append(variants, r.makeMessageVariant(row))
	}

	return variants, nil
}

func (r *variantsRepository) GetScenarioKeys(ctx context.Context) ([]string, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var keys []string

	query, args, err := sqlx.Named(queryGetScenarioKeys, map[string]interface{}{})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScenarioKeys named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &keys, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScenarioKeys execution err")
		return nil, err
	}

	return keys, nil
}

func (r *variantsRepository) GetAllVariants(ctx context.Context, limit, offset int) ([]entity.MessageVariant, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var rows []MessageVariantDB
	var total int

	countQuery, countArgs, err := sqlx.Named(queryCountAllVariants, map[string]interface{}{})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountAllVariants named query preparation err")
		return nil, 0, err
	}

	countQuery = r.q.Rebind(countQuery)

	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountAllVariants execution err")
		return nil, 0, err
	}

	argsKV := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}

	query, args, err := sqlx.Named(queryGetAllVariants, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllVariants named query preparation err")
		return nil, 0, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllVariants execution err")
		return nil, 0, err
	}

	variants := make([]entity.MessageVariant, 0, len(rows))
	for _, row := range rows {
		variants = append(variants, r.makeMessageVariant(row))
	}

	return variants, total, nil
}

// IncrementCounters applies the whole delta in one additive UPDATE so
// concurrent serves and trackers never lose counts. The running mean is
// folded in by the database for the same reason.
func (r *variantsRepository) IncrementCounters(ctx context.Context, id string, delta entity.VariantCounterDelta) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":              id,
		"shown":           delta.Shown,
		"responses":       delta.Responses,
		"positives":       delta.Positives,
		"conversions":     delta.Conversions,
		"score_delta":     delta.ScoreDelta,
		"has_score_delta": delta.HasScoreDelta,
		"updated_at":      time.Now(),
	}

	query, args, err := sqlx.Named(queryIncrementCounters, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("IncrementCounters named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("IncrementCounters execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("IncrementCounters rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("IncrementCounters no rows affected")
		return experiment.ErrVariantNotFound
	}

	return nil
}

func (r *variantsRepository) SetSignificance(ctx context.Context, id string, confidence float64, isWinner bool) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":               id,
		"confidence_level": confidence,
		"is_winner":        isWinner,
		"updated_at":       time.Now(),
	}

	query, args, err := sqlx.Named(querySetSignificance, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SetSignificance named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("SetSignificance execution err")
		return err
	}

	return nil
}

func (r *variantsRepository) DemoteControl(ctx context.Context, scenarioKey string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"scenario_key": scenarioKey,
		"updated_at":   time.Now(),
	}

	query, args, err := sqlx.Named(queryDemoteControl, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DemoteControl named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DemoteControl execution err")
		return err
	}

	return nil
}

func (r *variantsRepository) PromoteVariant(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":         id,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryPromoteVariant, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("PromoteVariant named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("PromoteVariant execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("PromoteVariant rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("PromoteVariant no rows affected")
		return experiment.ErrVariantNotFound
	}

	return nil
}

func (r *variantsRepository) makeMessageVariant(row MessageVariantDB) entity.MessageVariant {
	return entity.MessageVariant{
		ID:                row.ID.String,
		ScenarioKey:       row.ScenarioKey.String,
		Name:              row.Name.String,
		Template:          row.Template.String,
		TimesShown:        int(row.TimesShown.Int64),
		ResponsesReceived: int(row.ResponsesReceived.Int64),
		PositiveResponses: int(row.PositiveResponses.Int64),
		Conversions:       int(row.Conversions.Int64),
		AvgScoreDelta:     row.AvgScoreDelta.Float64,
		IsControl:         row.IsControl.Bool,
		IsWinner:          row.IsWinner.Bool,
		ConfidenceLevel:   row.ConfidenceLevel.Float64,
		IsActive:          row.IsActive.Bool,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
