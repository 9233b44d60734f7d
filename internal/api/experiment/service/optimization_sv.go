package experimentService

import (
	"LeadPilot/internal/api/experiment"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"
	"math"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	minShowsForSignificance = 100
	winnerZScore            = 1.96
	promotionConfidence     = 0.99
)

var positiveResponsePattern = regexp.MustCompile(
	`(?i)\b(yes|yeah|sure|great|perfect|awesome|interested|sounds good|thanks|thank you|ok(ay)?|let'?s do it)\b|👍|🙂|😊|❤️`,
)

func (s *optimizationService) IsPositiveResponse(message string) bool {
	return positiveResponsePattern.MatchString(message)
}

// TrackInteraction folds one observed outcome into the served variant's
// counters. The counter move is a single additive UPDATE; the per-event
// interaction row is best-effort audit data.
func (s *optimizationService) TrackInteraction(ctx context.Context, event experiment.InteractionEvent) error {
	requestID := contextPkg.GetRequestID(ctx)

	if event.VariantID == "" || event.ConversationID == "" {
		return experiment.ErrInvalidInteraction
	}

	client, err := s.experimentRepo.NewClient(false)
	if err != nil {
		return err
	}

	delta := entity.VariantCounterDelta{
		ScoreDelta:    event.ScoreDelta,
		HasScoreDelta: event.HasScoreDelta,
	}
	if event.Responded {
		delta.Responses = 1
	}
	if event.Positive {
		delta.Positives = 1
	}
	if event.Converted {
		delta.Conversions = 1
	}

	if err := client.Variants.IncrementCounters(ctx, event.VariantID, delta); err != nil {
		return err
	}

	interactionID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to generate interaction id")
		return nil
	}

	interaction := entity.VariantInteraction{
		ID:             interactionID,
		VariantID:      event.VariantID,
		ConversationID: event.ConversationID,
		Responded:      event.Responded,
		Positive:       event.Positive,
		Converted:      event.Converted,
		ScoreDelta:     event.ScoreDelta,
		CreatedAt:      time.Now(),
	}

	if err := client.Interactions.CreateInteraction(ctx, interaction); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"variant_id": event.VariantID,
			"error":      err.Error(),
		}).Warn("Failed to record interaction audit row")
	}

	return nil
}

// CheckSignificance runs the two-proportion z-test for every challenger in
// the scenario against its control. Winners past the promotion threshold
// replace the control and get a fresh challenger spawned from their
// template.
func (s *optimizationService) CheckSignificance(ctx context.Context, scenarioKey string) (*experiment.SignificanceResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.experimentRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	variants, err := client.Variants.GetActiveByScenario(ctx, scenarioKey)
	if err != nil {
		return nil, err
	}

	var control *entity.MessageVariant
	for i := range variants {
		if variants[i].IsControl {
			control = &variants[i]
			break
		}
	}

	result := &experiment.SignificanceResponse{
		ScenarioKey: scenarioKey,
		Winners:     make(map[string]float64),
	}

	if control == nil || control.TimesShown == 0 {
		return result, nil
	}

	for _, variant := range variants {
		if variant.IsControl || variant.TimesShown < minShowsForSignificance {
			continue
		}

		z := twoProportionZ(variant.Conversions, variant.TimesShown, control.Conversions, control.TimesShown)
		confidence := confidenceFromZ(z)
		better := conversionRate(variant) > conversionRate(*control)
		isWinner := math.Abs(z) > winnerZScore && better

		if err := client.Variants.SetSignificance(ctx, variant.ID, confidence, isWinner); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"variant_id": variant.ID,
				"error":      err.Error(),
			}).Error("Failed to persist significance result")
			continue
		}

		result.Evaluated++
		if isWinner {
			result.Winners[variant.ID] = confidence
		}

		if isWinner && confidence > promotionConfidence {
			if err := s.promoteVariant(ctx, scenarioKey, variant); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"variant_id": variant.ID,
					"error":      err.Error(),
				}).Error("Failed to promote winning variant")
				continue
			}
			result.Promoted = append(result.Promoted, variant.ID)
		}
	}

	return result, nil
}

// promoteVariant swaps the experiment's control inside one transaction and
// spawns a fresh challenger seeded from the winner's template.
func (s *optimizationService) promoteVariant(ctx context.Context, scenarioKey string, winner entity.MessageVariant) error {
	client, err := s.experimentRepo.NewClient(true)
	if err != nil {
		return err
	}

	if err := client.Variants.DemoteControl(ctx, scenarioKey); err != nil {
		_ = client.Rollback()
		return err
	}

	if err := client.Variants.PromoteVariant(ctx, winner.ID); err != nil {
		_ = client.Rollback()
		return err
	}

	challengerID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		_ = client.Rollback()
		return err
	}

	now := time.Now()
	challenger := entity.MessageVariant{
		ID:          challengerID,
		ScenarioKey: scenarioKey,
		Name:        winner.Name + "-challenger",
		Template:    winner.Template,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := client.Variants.CreateVariant(ctx, challenger); err != nil {
		_ = client.Rollback()
		return err
	}

	return client.Commit()
}

// StartOptimizationLoop re-evaluates every active scenario on a fixed
// interval until the context is cancelled.
func (s *optimizationService) StartOptimizationLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.log.WithFields(logrus.Fields{
			"interval": interval.String(),
		}).Info("Optimization loop started")

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Optimization loop stopped")
				return
			case <-ticker.C:
				s.runSignificanceSweep(ctx)
			}
		}
	}()
}

func (s *optimizationService) runSignificanceSweep(ctx context.Context) {
	client, err := s.experimentRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Significance sweep could not open storage client")
		return
	}

	keys, err := client.Variants.GetScenarioKeys(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Significance sweep could not list scenarios")
		return
	}

	for _, key := range keys {
		if _, err := s.CheckSignificance(ctx, key); err != nil {
			s.log.WithFields(logrus.Fields{
				"scenario_key": key,
				"error":        err.Error(),
			}).Error("Significance check failed")
		}
	}
}

func (s *optimizationService) GetAllVariants(ctx context.Context, page, limit int) (*experiment.VariantListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	client, err := s.experimentRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	variants, total, err := client.Variants.GetAllVariants(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	resp := &experiment.VariantListResponse{
		Variants: make([]experiment.VariantResponse, 0, len(variants)),
		Total:    total,
	}
	for _, v := range variants {
		resp.Variants = append(resp.Variants, variantResponse(v))
	}

	return resp, nil
}

func (s *optimizationService) GetVariant(ctx context.Context, id string) (*experiment.VariantResponse, error) {
	client, err := s.experimentRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	variant, err := client.Variants.GetVariantByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := variantResponse(variant)
	return &resp, nil
}

func variantResponse(v entity.MessageVariant) experiment.VariantResponse {
	return experiment.VariantResponse{
		ID:                v.ID,
		ScenarioKey:       v.ScenarioKey,
		Name:              v.Name,
		TimesShown:        v.TimesShown,
		ResponsesReceived: v.ResponsesReceived,
		PositiveResponses: v.PositiveResponses,
		Conversions:       v.Conversions,
		AvgScoreDelta:     v.AvgScoreDelta,
		IsControl:         v.IsControl,
		IsWinner:          v.IsWinner,
		ConfidenceLevel:   v.ConfidenceLevel,
		CreatedAt:         v.CreatedAt,
	}
}

func conversionRate(v entity.MessageVariant) float64 {
	if v.TimesShown == 0 {
		return 0
	}
	return float64(v.Conversions) / float64(v.TimesShown)
}
