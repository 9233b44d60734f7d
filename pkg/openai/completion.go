package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"
)

type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// ICompleter is the provider contract the chatbot pipeline depends on. The
// fallback path is optional: when no API key is configured Enabled reports
// false and the orchestrator never calls Complete.
type ICompleter interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string, opts CompletionOptions) (string, error)
	Enabled() bool
	Name() string
}

type completionService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewCompleter() ICompleter {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_CHAT_MODEL")

	if model == "" {
		model = openai.GPT4oMini
	}

	timeout := 8 * time.Second
	if raw := os.Getenv("LLM_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			timeout = parsed
		}
	}

	svc := &completionService{
		model:   model,
		timeout: timeout,
	}

	if apiKey != "" {
		svc.client = openai.NewClient(apiKey)
	}

	return svc
}

func (c *completionService) Enabled() bool {
	return c.client != nil
}

func (c *completionService) Name() string {
	return "openai"
}

func (c *completionService) Complete(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
	opts CompletionOptions,
) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("openai completer disabled: no API key configured")
	}

	if opts.MaxTokens == 0 {
		opts.MaxTokens = 200
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		},
	)

	if err != nil {
		return "", fmt.Errorf("openai completion error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
