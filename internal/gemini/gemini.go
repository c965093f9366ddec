package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"simclinic/internal/config"

	"google.golang.org/genai"
)

const defaultModel = "gemini-3-pro"

// gradingTemperature keeps grading output stable across re-runs.
const gradingTemperature = 0.3

// Client invokes the Gemini API for transcript grading.
type Client struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// NewClient returns a Client configured from the environment.
func NewClient() Client {
	return Client{
		Model:           ModelName(),
		Temperature:     gradingTemperature,
		MaxOutputTokens: config.MaxGradingOutputTokens,
	}
}

func modelName() string {
	if m := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); m != "" {
		return m
	}
	return defaultModel
}

// ModelName returns the resolved Gemini model name.
func ModelName() string {
	return modelName()
}

func newClient(ctx context.Context) (*genai.Client, error) {
	apiKey := config.GeminiAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
}

func (c Client) buildConfig(systemPrompt string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature:      &c.Temperature,
		MaxOutputTokens:  c.MaxOutputTokens,
		ResponseMIMEType: "application/json",
	}
}

// Complete sends one grading request and returns the raw model text.
// The response is requested as JSON but not guaranteed to parse; callers
// must validate it themselves.
func (c Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	client, err := newClient(ctx)
	if err != nil {
		return "", err
	}
	model := c.Model
	if model == "" {
		model = modelName()
	}
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(userPrompt), c.buildConfig(systemPrompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return result.Text(), nil
}
