package experimentService

import (
	"LeadPilot/internal/api/experiment"
	experimentRepository "LeadPilot/internal/api/experiment/repository"
	"LeadPilot/internal/entity"
	"context"
	"fmt"
	"sort"
	"time"
)

type significanceCall struct {
	confidence float64
	isWinner   bool
}

type fakeVariantStore struct {
	byScenario   map[string][]entity.MessageVariant
	increments   map[string][]entity.VariantCounterDelta
	significance map[string]significanceCall
	demoted      []string
	promoted     []string
	created      []entity.MessageVariant
	err          error
}

func newFakeVariantStore() *fakeVariantStore {
	return &fakeVariantStore{
		byScenario:   make(map[string][]entity.MessageVariant),
		increments:   make(map[string][]entity.VariantCounterDelta),
		significance: make(map[string]significanceCall),
	}
}

func (f *fakeVariantStore) CreateVariant(_ context.Context, variant entity.MessageVariant) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, variant)
	f.byScenario[variant.ScenarioKey] = append(f.byScenario[variant.ScenarioKey], variant)
	return nil
}

func (f *fakeVariantStore) GetVariantByID(_ context.Context, id string) (entity.MessageVariant, error) {
	for _, variants := range f.byScenario {
		for _, v := range variants {
			if v.ID == id {
				return v, nil
			}
		}
	}
	if f.err != nil {
		return entity.MessageVariant{}, f.err
	}
	return entity.MessageVariant{}, experiment.ErrVariantNotFound
}

func (f *fakeVariantStore) GetActiveByScenario(_ context.Context, scenarioKey string) ([]entity.MessageVariant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byScenario[scenarioKey], nil
}

func (f *fakeVariantStore) GetScenarioKeys(_ context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	keys := make([]string, 0, len(f.byScenario))
	for key := range f.byScenario {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeVariantStore) GetAllVariants(_ context.Context, limit, offset int) ([]entity.MessageVariant, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var all []entity.MessageVariant
	keys, _ := f.GetScenarioKeys(context.Background())
	for _, key := range keys {
		all = append(all, f.byScenario[key]...)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeVariantStore) IncrementCounters(_ context.Context, id string, delta entity.VariantCounterDelta) error {
	if f.err != nil {
		return f.err
	}
	f.increments[id] = append(f.increments[id], delta)
	return nil
}

func (f *fakeVariantStore) SetSignificance(_ context.Context, id string, confidence float64, isWinner bool) error {
	if f.err != nil {
		return f.err
	}
	f.significance[id] = significanceCall{confidence: confidence, isWinner: isWinner}
	return nil
}

func (f *fakeVariantStore) DemoteControl(_ context.Context, scenarioKey string) error {
	if f.err != nil {
		return f.err
	}
	f.demoted = append(f.demoted, scenarioKey)
	return nil
}

func (f *fakeVariantStore) PromoteVariant(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.promoted = append(f.promoted, id)
	return nil
}

type fakeInteractionStore struct {
	created []entity.VariantInteraction
	err     error
}

func (f *fakeInteractionStore) CreateInteraction(_ context.Context, interaction entity.VariantInteraction) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, interaction)
	return nil
}

type fakeExperimentRepo struct {
	variants     *fakeVariantStore
	interactions *fakeInteractionStore
	commits      int
	rollbacks    int
	err          error
}

func newFakeExperimentRepo() *fakeExperimentRepo {
	return &fakeExperimentRepo{
		variants:     newFakeVariantStore(),
		interactions: &fakeInteractionStore{},
	}
}

func (f *fakeExperimentRepo) NewClient(_ bool) (experimentRepository.Client, error) {
	if f.err != nil {
		return experimentRepository.Client{}, f.err
	}
	return experimentRepository.Client{
		Variants:     f.variants,
		Interactions: f.interactions,
		Commit:       func() error { f.commits++; return nil },
		Rollback:     func() error { f.rollbacks++; return nil },
	}, nil
}

type fakeIDSource struct {
	seq int
}

func (f *fakeIDSource) NewULIDFromTimestamp(_ time.Time) (string, error) {
	f.seq++
	return fmt.Sprintf("test-id-%03d", f.seq), nil
}
