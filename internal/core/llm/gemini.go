package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/devfoliohq/boltgen/internal/core"
	"github.com/devfoliohq/boltgen/internal/models"
	"github.com/devfoliohq/boltgen/internal/prompts"
)

const defaultModelName = "gemini-2.0-flash"

// Generation settings shared by both paths; only the response MIME type
// differs (text/plain for chat, application/json for code generation).
var (
	genTemperature     = float32(1)
	genTopP            = float32(0.95)
	genTopK            = int32(40)
	genMaxOutputTokens = int32(8192)
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultModelName
	}
	return &GeminiClient{client: cl, modelName: modelName}, nil
}

func (g *GeminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Chat sends a conversational prompt and returns the reply as plain text.
func (g *GeminiClient) Chat(ctx context.Context, prompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &genTemperature,
		TopP:             &genTopP,
		TopK:             &genTopK,
		MaxOutputTokens:  &genMaxOutputTokens,
		ResponseMIMEType: "text/plain",
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateCode sends a build prompt to the code-generation configuration and
// parses the structured JSON reply. The chat session is seeded with one
// example exchange so the model answers in the required schema.
func (g *GeminiClient) GenerateCode(ctx context.Context, prompt string) (*models.CodeGenResult, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      &genTemperature,
		TopP:             &genTopP,
		TopK:             &genTopK,
		MaxOutputTokens:  &genMaxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	session := m.StartChat()
	session.History = []*genai.Content{
		{
			Role:  "user",
			Parts: []genai.Part{genai.Text("Generate a to do app : " + prompts.CodeGenPrompt)},
		},
		{
			Role:  "model",
			Parts: []genai.Part{genai.Text(prompts.CodeSeedExample)},
		},
	}

	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini code generation: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return ParseCodeResponse(text)
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var _ core.AIClient = (*GeminiClient)(nil)
