package chatbot

import "LeadPilot/pkg/response"

var (
	ErrConversationNotFound = response.NewError(404, "conversation not found")
	ErrReviewItemNotFound   = response.NewError(404, "review item not found")
	ErrReviewAlreadyDone    = response.NewError(409, "review item already reviewed")
	ErrEmptyMessage         = response.NewError(400, "message must not be empty")
	ErrSnapshotReload       = response.NewError(500, "failed to reload pattern snapshot")
)
