package chatbotHandler

import (
	"LeadPilot/internal/api/chatbot"
	contextPkg "LeadPilot/pkg/context"
	"LeadPilot/pkg/handlerUtil"
	"LeadPilot/pkg/log"
	"github.com/gofiber/fiber/v2"
	fiberWs "github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
	"time"
)

func (h *ChatbotHandler) ChatMessage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing chat message request")

	var req chatbot.ChatMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.chatbotService.HandleMessage(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "chat_message")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
	}
}

// ChatSocket serves the widget's streaming transport. Each inbound frame is a
// ChatMessageRequest; the reply frame carries the same payload as the REST
// endpoint so the widget can use either interchangeably.
func (h *ChatbotHandler) ChatSocket(conn *fiberWs.Conn) {
	defer conn.Close()

	requestID, _ := conn.Locals("request_id").(string)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req chatbot.ChatMessageRequest
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payload, &req); err != nil {
			if writeErr := conn.WriteJSON(fiber.Map{"error": "Invalid message payload"}); writeErr != nil {
				return
			}
			continue
		}

		if err := h.validator.Struct(req); err != nil {
			if writeErr := conn.WriteJSON(fiber.Map{"error": "Validation failed: " + err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		c, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), 10*time.Second)
		resp, err := h.chatbotService.HandleMessage(c, req)
		cancel()
		if err != nil {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Websocket chat message failed")
			if writeErr := conn.WriteJSON(fiber.Map{"error": err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}
