// Package ocr implements the OCR collaborator the image ingest entry path
// calls (spec.md §4, §6.1 "POST /agent/image"). The collaborator itself
// performs no database work: it returns raw text and a confidence scalar,
// and the caller either shows it to the user or resubmits it to the
// standard message entry with from_image=true.
//
// Grounded on llmclient's openAIProvider (pkg/llmclient/provider_openai.go)
// for the go-openai client wiring shape; reimplemented against the vision
// (multimodal) chat-completions call instead of the plain-text one, since
// OCR engine internals are explicitly out of scope and go-openai's vision
// endpoint is the nearest thing to an "external OCR collaborator" already
// present in this module's stack.
package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Provider extracts text from an image. Confidence is a coarse scalar in
// [0, 1]; the core never post-processes it (§6.1).
type Provider interface {
	Extract(ctx context.Context, imageData []byte, mimeType string) (text string, confidence float64, err error)
}

const systemPrompt = "You transcribe visible text from an image of a transport-operations document (a manifest, a handwritten note, a printed schedule). Reply with only the transcribed text, verbatim, no commentary."

type visionProvider struct {
	client *openai.Client
	model  string
}

// NewVisionProvider constructs a Provider backed by an OpenAI-compatible
// vision-capable chat-completions model. baseURL may point at a
// self-hosted or alternate-vendor endpoint; empty uses the default API.
func NewVisionProvider(apiKey, baseURL, model string) Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &visionProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

func (p *visionProvider) Extract(ctx context.Context, imageData []byte, mimeType string) (string, float64, error) {
	if len(imageData) == 0 {
		return "", 0, fmt.Errorf("ocr: empty image data")
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Transcribe the text in this image."},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", 0, fmt.Errorf("ocr: vision request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", 0, nil
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", 0, nil
	}
	// No per-token confidence is available from a chat-completions response;
	// a non-empty transcription is reported at a fixed, conservative
	// confidence rather than fabricating a precise score the model never
	// produced.
	return text, 0.75, nil
}
