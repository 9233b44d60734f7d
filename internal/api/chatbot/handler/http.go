package chatbotHandler

import (
	chatbotService "LeadPilot/internal/api/chatbot/service"
	"LeadPilot/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberWs "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type ChatbotHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	chatbotService chatbotService.IChatbotService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs chatbotService.IChatbotService,
) *ChatbotHandler {
	return &ChatbotHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		chatbotService: cs,
	}
}

func (h *ChatbotHandler) Start(srv fiber.Router) {
	chat := srv.Group("/chat")

	// Public widget endpoints
	chat.Post("/message", h.middleware.NewRateLimiter, h.ChatMessage)

	chat.Use("/ws", func(c *fiber.Ctx) error {
		if fiberWs.IsWebSocketUpgrade(c) {
			c.Locals("request_id", h.middleware.GetRequestID(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	chat.Get("/ws", fiberWs.New(h.ChatSocket))

	// Back-office endpoints (requires operator token)
	admin := srv.Group("/admin", h.middleware.NewTokenMiddleware)
	admin.Post("/reload", h.ReloadSnapshot)
	admin.Get("/review", h.ListReviews)
	admin.Put("/review/:id", h.ReviewItem)
}
