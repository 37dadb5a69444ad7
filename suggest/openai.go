package suggest

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a helpful writing assistant. " +
	"Improve the given text by fixing typos, improving clarity, " +
	"or adding helpful content. Keep changes minimal and natural. " +
	"Return ONLY the improved text, nothing else."

const (
	defaultModel     = openai.GPT4o
	defaultMaxTokens = 2000
	temperature      = 0.7
)

// OpenAIProvider asks a chat model for an improved full text.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider reads OPENAI_API_KEY (and optionally OPENAI_MODEL)
// from the environment. A missing key is a startup-time error: the loop
// never runs without a usable provider.
func NewOpenAIProvider() (*OpenAIProvider, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultModel
	}

	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Suggest returns an improved version of text, or ErrNoSuggestion when the
// model returns nothing new.
func (p *OpenAIProvider) Suggest(ctx context.Context, text string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("suggestion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}

	suggested := strings.TrimSpace(resp.Choices[0].Message.Content)
	if suggested == "" || suggested == text {
		return "", ErrNoSuggestion
	}
	return suggested, nil
}
