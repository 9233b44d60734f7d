package experimentService

import (
	"LeadPilot/internal/api/experiment"
	"LeadPilot/internal/entity"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestOptimization(repo *fakeExperimentRepo) *optimizationService {
	return &optimizationService{
		log:            logrus.New(),
		experimentRepo: repo,
		utils:          &fakeIDSource{},
	}
}

func TestIsPositiveResponse(t *testing.T) {
	s := newTestOptimization(newFakeExperimentRepo())

	assert.True(t, s.IsPositiveResponse("Yes, that sounds good"))
	assert.True(t, s.IsPositiveResponse("Sure, let's do it"))
	assert.True(t, s.IsPositiveResponse("👍"))
	assert.True(t, s.IsPositiveResponse("Okay"))

	assert.False(t, s.IsPositiveResponse("Not really what we need"))
	assert.False(t, s.IsPositiveResponse("How much does it cost?"))
	assert.False(t, s.IsPositiveResponse(""))
}

func TestTrackInteraction(t *testing.T) {
	repo := newFakeExperimentRepo()
	s := newTestOptimization(repo)

	err := s.TrackInteraction(context.Background(), experiment.InteractionEvent{
		VariantID:      "var-1",
		ConversationID: "conv-1",
		Responded:      true,
		Positive:       true,
		Converted:      false,
		ScoreDelta:     12.5,
		HasScoreDelta:  true,
	})
	assert.NoError(t, err)

	deltas := repo.variants.increments["var-1"]
	assert.Len(t, deltas, 1)
	assert.Equal(t, 0, deltas[0].Shown)
	assert.Equal(t, 1, deltas[0].Responses)
	assert.Equal(t, 1, deltas[0].Positives)
	assert.Equal(t, 0, deltas[0].Conversions)
	assert.Equal(t, 12.5, deltas[0].ScoreDelta)
	assert.True(t, deltas[0].HasScoreDelta)

	// The audit row mirrors the event.
	assert.Len(t, repo.interactions.created, 1)
	assert.Equal(t, "var-1", repo.interactions.created[0].VariantID)
	assert.Equal(t, "conv-1", repo.interactions.created[0].ConversationID)
	assert.True(t, repo.interactions.created[0].Responded)
}

func TestTrackInteraction_RejectsEmptyIdentifiers(t *testing.T) {
	repo := newFakeExperimentRepo()
	s := newTestOptimization(repo)

	err := s.TrackInteraction(context.Background(), experiment.InteractionEvent{
		ConversationID: "conv-1",
		Responded:      true,
	})
	assert.ErrorIs(t, err, experiment.ErrInvalidInteraction)

	err = s.TrackInteraction(context.Background(), experiment.InteractionEvent{
		VariantID: "var-1",
		Responded: true,
	})
	assert.ErrorIs(t, err, experiment.ErrInvalidInteraction)

	assert.Empty(t, repo.variants.increments)
	assert.Empty(t, repo.interactions.created)
}

func TestTrackInteraction_AuditRowFailureIsNotFatal(t *testing.T) {
	repo := newFakeExperimentRepo()
	repo.interactions.err = assert.AnError
	s := newTestOptimization(repo)

	err := s.TrackInteraction(context.Background(), experiment.InteractionEvent{
		VariantID:      "var-1",
		ConversationID: "conv-1",
		Responded:      true,
	})
	assert.NoError(t, err)
	assert.Len(t, repo.variants.increments["var-1"], 1)
}

func TestCheckSignificance_MarksWinnerBelowPromotionBar(t *testing.T) {
	repo := newFakeExperimentRepo()
	repo.variants.byScenario["decision_driver"] = []entity.MessageVariant{
		{ID: "ctrl", ScenarioKey: "decision_driver", IsControl: true, TimesShown: 1000, Conversions: 40},
		{ID: "chal", ScenarioKey: "decision_driver", TimesShown: 1000, Conversions: 60},
	}
	s := newTestOptimization(repo)

	result, err := s.CheckSignificance(context.Background(), "decision_driver")
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Evaluated)

	// z ~ 2.05: significant, but its confidence sits under the 0.99
	// promotion bar, so the control keeps its slot.
	assert.Contains(t, result.Winners, "chal")
	assert.Empty(t, result.Promoted)
	assert.Empty(t, repo.variants.demoted)

	call := repo.variants.significance["chal"]
	assert.True(t, call.isWinner)
	assert.Greater(t, call.confidence, 0.95)
	assert.Less(t, call.confidence, 0.99)
}

func TestCheckSignificance_PromotesAndSpawnsChallenger(t *testing.T) {
	repo := newFakeExperimentRepo()
	repo.variants.byScenario["evaluation"] = []entity.MessageVariant{
		{ID: "ctrl", ScenarioKey: "evaluation", IsControl: true, TimesShown: 1000, Conversions: 40},
		{ID: "chal", ScenarioKey: "evaluation", Name: "warm-open", Template: "Hey {name}!", TimesShown: 1000, Conversions: 100},
	}
	s := newTestOptimization(repo)

	result, err := s.CheckSignificance(context.Background(), "evaluation")
	assert.NoError(t, err)
	assert.Equal(t, []string{"chal"}, result.Promoted)

	assert.Equal(t, []string{"evaluation"}, repo.variants.demoted)
	assert.Equal(t, []string{"chal"}, repo.variants.promoted)
	assert.Equal(t, 1, repo.commits)
	assert.Equal(t, 0, repo.rollbacks)

	// A fresh challenger is seeded from the winner's template.
	assert.Len(t, repo.variants.created, 1)
	challenger := repo.variants.created[0]
	assert.Equal(t, "warm-open-challenger", challenger.Name)
	assert.Equal(t, "Hey {name}!", challenger.Template)
	assert.Equal(t, "evaluation", challenger.ScenarioKey)
	assert.True(t, challenger.IsActive)
	assert.False(t, challenger.IsControl)
}

func TestCheckSignificance_SkipsUnderSampledChallengers(t *testing.T) {
	repo := newFakeExperimentRepo()
	repo.variants.byScenario["interest"] = []entity.MessageVariant{
		{ID: "ctrl", ScenarioKey: "interest", IsControl: true, TimesShown: 500, Conversions: 20},
		{ID: "chal", ScenarioKey: "interest", TimesShown: 99, Conversions: 50},
	}
	s := newTestOptimization(repo)

	result, err := s.CheckSignificance(context.Background(), "interest")
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Evaluated)
	assert.Empty(t, result.Winners)
	assert.Empty(t, repo.variants.significance)
}

func TestCheckSignificance_NoControlIsANoOp(t *testing.T) {
	repo := newFakeExperimentRepo()
	repo.variants.byScenario["awareness"] = []entity.MessageVariant{
		{ID: "chal", ScenarioKey: "awareness", TimesShown: 1000, Conversions: 100},
	}
	s := newTestOptimization(repo)

	result, err := s.CheckSignificance(context.Background(), "awareness")
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Evaluated)
	assert.Empty(t, result.Winners)
}

func TestGetAllVariants_Pagination(t *testing.T) {
	repo := newFakeExperimentRepo()
	repo.variants.byScenario["a"] = []entity.MessageVariant{
		{ID: "v1", ScenarioKey: "a"},
		{ID: "v2", ScenarioKey: "a"},
		{ID: "v3", ScenarioKey: "a"},
	}
	s := newTestOptimization(repo)

	page1, err := s.GetAllVariants(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, page1.Total)
	assert.Len(t, page1.Variants, 2)

	page2, err := s.GetAllVariants(context.Background(), 2, 2)
	assert.NoError(t, err)
	assert.Len(t, page2.Variants, 1)
	assert.Equal(t, "v3", page2.Variants[0].ID)

	// Out-of-range parameters normalize instead of failing.
	all, err := s.GetAllVariants(context.Background(), 0, -5)
	assert.NoError(t, err)
	assert.Len(t, all.Variants, 3)
}

func TestGetVariant(t *testing.T) {
	repo := newFakeExperimentRepo()
	repo.variants.byScenario["pricing"] = []entity.MessageVariant{
		{ID: "v1", ScenarioKey: "pricing", Name: "direct", TimesShown: 42, Conversions: 7, IsControl: true},
	}
	s := newTestOptimization(repo)

	resp, err := s.GetVariant(context.Background(), "v1")
	assert.NoError(t, err)
	assert.Equal(t, "v1", resp.ID)
	assert.Equal(t, "pricing", resp.ScenarioKey)
	assert.Equal(t, "direct", resp.Name)
	assert.Equal(t, 42, resp.TimesShown)
	assert.Equal(t, 7, resp.Conversions)
	assert.True(t, resp.IsControl)
}

func TestGetVariant_NotFound(t *testing.T) {
	s := newTestOptimization(newFakeExperimentRepo())

	resp, err := s.GetVariant(context.Background(), "missing")
	assert.ErrorIs(t, err, experiment.ErrVariantNotFound)
	assert.Nil(t, resp)
}
