package chatbotService

import (
	"LeadPilot/internal/api/chatbot"
	chatbotRepository "LeadPilot/internal/api/chatbot/repository"
	experimentService "LeadPilot/internal/api/experiment/service"
	openaiPkg "LeadPilot/pkg/openai"
	redisPkg "LeadPilot/pkg/redis"
	"LeadPilot/pkg/s3"
	"LeadPilot/pkg/smtp"
	"LeadPilot/pkg/utils"
	"LeadPilot/pkg/webhook"
	websocketPkg "LeadPilot/pkg/websocket"
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type IChatbotService interface {
	HandleMessage(ctx context.Context, req chatbot.ChatMessageRequest) (chatbot.ChatMessageResponse, error)
	Classify(ctx context.Context, message string) (chatbot.ClassificationResult, error)
	ReloadSnapshot(ctx context.Context) (*chatbot.ReloadResponse, error)
	GetPendingReviews(ctx context.Context, page, limit int) (*chatbot.ReviewListResponse, error)
	ReviewItem(ctx context.Context, id, reviewer string, req chatbot.ReviewUpdateRequest) error
}

type chatbotService struct {
	log             *logrus.Logger
	chatbotRepo     chatbotRepository.Repository
	redis           redisPkg.IRedis
	completer       openaiPkg.ICompleter
	mailer          smtp.ItfSmtp
	notifier        webhook.INotifier
	operatorBridge  websocketPkg.IOperatorBridge
	s3Client        s3.ItfS3
	utils           utils.IUtils
	personalization experimentService.IPersonalizationService
	optimization    experimentService.IOptimizationService

	snapMu sync.Mutex
	snap   atomic.Pointer[snapshot]
}

func NewChatbotService(
	log *logrus.Logger,
	chatbotRepo chatbotRepository.Repository,
	redis redisPkg.IRedis,
	completer openaiPkg.ICompleter,
	mailer smtp.ItfSmtp,
	notifier webhook.INotifier,
	operatorBridge websocketPkg.IOperatorBridge,
	s3Client s3.ItfS3,
	utils utils.IUtils,
	personalization experimentService.IPersonalizationService,
	optimization experimentService.IOptimizationService,
) IChatbotService {
	return &chatbotService{
		log:             log,
		chatbotRepo:     chatbotRepo,
		redis:           redis,
		completer:       completer,
		mailer:          mailer,
		notifier:        notifier,
		operatorBridge:  operatorBridge,
		s3Client:        s3Client,
		utils:           utils,
		personalization: personalization,
		optimization:    optimization,
	}
}
