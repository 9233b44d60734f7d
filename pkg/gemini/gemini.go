package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openaiPkg "LeadPilot/pkg/openai"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Completer adapts Gemini to the same contract as the OpenAI client so the
// orchestrator can swap providers through LLM_PROVIDER.
type geminiCompleter struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

func NewCompleter() (openaiPkg.ICompleter, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	timeout := 8 * time.Second
	if raw := os.Getenv("LLM_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			timeout = parsed
		}
	}

	svc := &geminiCompleter{
		modelName: modelName,
		timeout:   timeout,
	}

	if apiKey == "" {
		return svc, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	svc.client = client
	return svc, nil
}

func (g *geminiCompleter) Enabled() bool {
	return g.client != nil
}

func (g *geminiCompleter) Name() string {
	return "gemini"
}

func (g *geminiCompleter) Complete(
	ctx context.Context,
	systemPrompt string,
	userPrompt string,
	opts openaiPkg.CompletionOptions,
) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini completer disabled: no API key configured")
	}

	if opts.MaxTokens == 0 {
		opts.MaxTokens = 200
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(opts.Temperature)
	model.SetMaxOutputTokens(int32(opts.MaxTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	res, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini completion error: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from gemini")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from gemini")
	}

	return string(text), nil
}

func (g *geminiCompleter) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
