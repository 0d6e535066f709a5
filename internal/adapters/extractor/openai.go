package extractor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

// OpenAI extracts blocks through an OpenAI-compatible chat-completion
// endpoint. Pointing BaseURL at a vLLM deployment serves self-hosted
// vision models through the same adapter.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (e *OpenAI) Name() string { return "openai" }

func (e *OpenAI) Extract(ctx context.Context, img []byte) ([]domain.ExtractedBlock, error) {
	dataURL := "data:" + sniffMime(img) + ";base64," + base64.StdEncoding.EncodeToString(img)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty response")
	}
	return parseBlocks(resp.Choices[0].Message.Content)
}
