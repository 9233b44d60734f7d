package experimentService

import (
	"LeadPilot/internal/api/experiment"
	experimentRepository "LeadPilot/internal/api/experiment/repository"
	"LeadPilot/internal/entity"
	"LeadPilot/pkg/utils"
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type IPersonalizationService interface {
	Personalize(ctx context.Context, in experiment.PersonalizeInput) (experiment.PersonalizeResult, error)
	DetectPersonality(messages []entity.Message) string
	DetermineStage(leadScore float64) string
}

type IOptimizationService interface {
	TrackInteraction(ctx context.Context, event experiment.InteractionEvent) error
	IsPositiveResponse(message string) bool
	CheckSignificance(ctx context.Context, scenarioKey string) (*experiment.SignificanceResponse, error)
	StartOptimizationLoop(ctx context.Context, interval time.Duration)
	GetAllVariants(ctx context.Context, page, limit int) (*experiment.VariantListResponse, error)
	GetVariant(ctx context.Context, id string) (*experiment.VariantResponse, error)
}

type personalizationService struct {
	log            *logrus.Logger
	experimentRepo experimentRepository.Repository
	utils          utils.IUtils
}

func NewPersonalizationService(
	log *logrus.Logger,
	experimentRepo experimentRepository.Repository,
	utils utils.IUtils,
) IPersonalizationService {
	return &personalizationService{
		log:            log,
		experimentRepo: experimentRepo,
		utils:          utils,
	}
}

type optimizationService struct {
	log            *logrus.Logger
	experimentRepo experimentRepository.Repository
	utils          utils.IUtils
}

func NewOptimizationService(
	log *logrus.Logger,
	experimentRepo experimentRepository.Repository,
	utils utils.IUtils,
) IOptimizationService {
	return &optimizationService{
		log:            log,
		experimentRepo: experimentRepo,
		utils:          utils,
	}
}
