package llmclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openAIProvider wraps a go-openai client as a Provider. Two instances
// back the primary/secondary pair (§4.3): typically the same API with
// different models, or two different base URLs for a self-hosted
// secondary.
type openAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider constructs a Provider backed by an OpenAI-compatible
// HTTP API. baseURL may point at a self-hosted or alternate-vendor
// endpoint; an empty baseURL uses the default OpenAI API.
func NewOpenAIProvider(name, apiKey, baseURL, model string) Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		name:   name,
	}
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("%s: completion request: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty completion response", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}
