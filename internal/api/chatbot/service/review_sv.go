package chatbotService

import (
	"LeadPilot/internal/api/chatbot"
	"LeadPilot/internal/entity"
	contextPkg "LeadPilot/pkg/context"
	"context"

	"github.com/sirupsen/logrus"
)

func (s *chatbotService) GetPendingReviews(ctx context.Context, page, limit int) (*chatbot.ReviewListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	items, total, err := client.Reviews.GetPendingReviews(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	resp := &chatbot.ReviewListResponse{
		Items: make([]chatbot.ReviewItemResponse, 0, len(items)),
		Total: total,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, chatbot.ReviewItemResponse{
			ID:             item.ID,
			ConversationID: item.ConversationID,
			VisitorMessage: item.VisitorMessage,
			BotResponse:    item.BotResponse,
			DetectedIntent: item.DetectedIntent,
			Confidence:     item.Confidence,
			Reason:         item.Reason,
			Status:         item.Status,
			CreatedAt:      item.CreatedAt,
		})
	}

	return resp, nil
}

// ReviewItem closes a pending queue entry with the operator's corrections.
func (s *chatbotService) ReviewItem(ctx context.Context, id, reviewer string, req chatbot.ReviewUpdateRequest) error {
	requestID := contextPkg.GetRequestID(ctx)

	client, err := s.chatbotRepo.NewClient(false)
	if err != nil {
		return err
	}

	item, err := client.Reviews.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}

	if item.Status == entity.ReviewStatusReviewed {
		return chatbot.ErrReviewAlreadyDone
	}

	item.Status = entity.ReviewStatusReviewed
	item.CorrectedIntent = req.CorrectedIntent
	item.CorrectedResponse = req.CorrectedResponse
	item.ReviewedBy = reviewer

	if err := client.Reviews.UpdateReview(ctx, item); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"review_id":   id,
		"reviewed_by": reviewer,
	}).Info("Review item closed")

	return nil
}
