package config

import (
	"LeadPilot/database/postgres"
	chatbotHandler "LeadPilot/internal/api/chatbot/handler"
	chatbotRepository "LeadPilot/internal/api/chatbot/repository"
	chatbotService "LeadPilot/internal/api/chatbot/service"
	experimentHandler "LeadPilot/internal/api/experiment/handler"
	experimentRepository "LeadPilot/internal/api/experiment/repository"
	experimentService "LeadPilot/internal/api/experiment/service"
	"LeadPilot/internal/middleware"
	"LeadPilot/pkg/gemini"
	openaiPkg "LeadPilot/pkg/openai"
	"LeadPilot/pkg/redis"
	"LeadPilot/pkg/s3"
	"LeadPilot/pkg/smtp"
	"LeadPilot/pkg/utils"
	"LeadPilot/pkg/webhook"
	websocketPkg "LeadPilot/pkg/websocket"
	"context"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"os"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	redisServer    redis.IRedis
	smtpMailer     smtp.ItfSmtp
	notifier       webhook.INotifier
	operatorBridge websocketPkg.IOperatorBridge
	completer      openaiPkg.ICompleter
	s3Client       s3.ItfS3
	optimization   experimentService.IOptimizationService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithWebhookNotifier(notifier webhook.INotifier) ServerOption {
	return func(s *Server) error {
		s.notifier = notifier
		return nil
	}
}

func WithOperatorBridge(bridge websocketPkg.IOperatorBridge) ServerOption {
	return func(s *Server) error {
		s.operatorBridge = bridge
		return nil
	}
}

// WithCompleter picks the LLM backend from LLM_PROVIDER. Anything other
// than "gemini" falls through to the OpenAI client, which degrades to a
// disabled no-op when no API key is configured.
func WithCompleter() ServerOption {
	return func(s *Server) error {
		if os.Getenv("LLM_PROVIDER") == "gemini" {
			completer, err := gemini.NewCompleter()
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to create Gemini client: %v", err)
				}
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.completer = completer
			return nil
		}
		s.completer = openaiPkg.NewCompleter()
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Experiment Domain
	experimentRepo := experimentRepository.New(s.db, s.log)
	personalizationServices := experimentService.NewPersonalizationService(s.log, experimentRepo, s.utils)
	optimizationServices := experimentService.NewOptimizationService(s.log, experimentRepo, s.utils)
	experimentHandlers := experimentHandler.New(s.log, s.validator, s.middleware, optimizationServices)
	s.optimization = optimizationServices

	// Chatbot Domain
	chatbotRepo := chatbotRepository.New(s.db, s.log)
	chatbotServices := chatbotService.NewChatbotService(s.log, chatbotRepo, s.redisServer, s.completer, s.smtpMailer, s.notifier, s.operatorBridge, s.s3Client, s.utils, personalizationServices, optimizationServices)
	chatbotHandlers := chatbotHandler.New(s.log, s.validator, s.middleware, chatbotServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, chatbotHandlers, experimentHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	if s.optimization != nil {
		s.optimization.StartOptimizationLoop(context.Background(), time.Hour)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	if err := s.engine.Listen(fmt.Sprintf(":%s", port)); err != nil {
		if s.operatorBridge != nil {
			s.operatorBridge.Close()
		}
		return err
	}

	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
