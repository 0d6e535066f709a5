package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

// Gemini extracts blocks through the Google generative AI API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (e *Gemini) Name() string { return "gemini" }

func (e *Gemini) Close() error { return e.client.Close() }

func (e *Gemini) Extract(ctx context.Context, img []byte) ([]domain.ExtractedBlock, error) {
	model := e.client.GenerativeModel(e.model)
	model.ResponseMIMEType = "application/json"

	format := strings.TrimPrefix(sniffMime(img), "image/")
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(format, img),
		genai.Text(extractionPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return parseBlocks(sb.String())
}
