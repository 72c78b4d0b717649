package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API through the official genai SDK.
type GeminiProvider struct {
	cli *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{cli: cli}, nil
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.User}}}},
		geminiConfig(req),
	)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyCompletion
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, ErrEmptyCompletion
	}

	return &Response{
		Content:      sb.String(),
		Model:        req.Model,
		FinishReason: string(candidate.FinishReason),
		Usage:        geminiUsage(resp.UsageMetadata),
	}, nil
}

func geminiConfig(req *Request) *genai.GenerateContentConfig {
	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func geminiUsage(md *genai.GenerateContentResponseUsageMetadata) Usage {
	if md == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens:     int(md.PromptTokenCount),
		CompletionTokens: int(md.CandidatesTokenCount),
		TotalTokens:      int(md.TotalTokenCount),
	}
}
