package experimentHandler

import (
	experimentService "LeadPilot/internal/api/experiment/service"
	"LeadPilot/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ExperimentHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	optimization experimentService.IOptimizationService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	os experimentService.IOptimizationService,
) *ExperimentHandler {
	return &ExperimentHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		optimization: os,
	}
}

func (h *ExperimentHandler) Start(srv fiber.Router) {
	// Widget-facing interaction events
	srv.Post("/interactions", h.middleware.NewRateLimiter, h.TrackInteraction)

	// Back-office endpoints (requires operator token)
	admin := srv.Group("/admin", h.middleware.NewTokenMiddleware)
	admin.Get("/variants", h.ListVariants)
	admin.Get("/variants/:id", h.GetVariant)
	admin.Post("/variants/:scenario/significance", h.CheckSignificance)
}
