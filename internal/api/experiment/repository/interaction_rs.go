package experimentRepository

import (
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *interactionsRepository) CreateInteraction(ctx context.Context, interaction entity.VariantInteraction) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":              interaction.ID,
		"variant_id":      interaction.VariantID,
		"conversation_id": interaction.ConversationID,
		"responded":       interaction.Responded,
		"positive":        interaction.Positive,
		"converted":       interaction.Converted,
		"score_delta":     interaction.ScoreDelta,
		"created_at":      interaction.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateInteraction, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateInteraction named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating interaction")
		return err
	}

	return nil
}
