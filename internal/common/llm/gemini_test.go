package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(&Request{
		System:      "system",
		Temperature: 0.2,
		MaxTokens:   800,
		JSON:        true,
	})

	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.2, *cfg.Temperature, 1e-6)
	assert.Equal(t, int32(800), cfg.MaxOutputTokens)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "system", cfg.SystemInstruction.Parts[0].Text)
}

func TestGeminiConfig_TextModeWithoutLimit(t *testing.T) {
	cfg := geminiConfig(&Request{Temperature: 0.7})

	assert.Zero(t, cfg.MaxOutputTokens)
	assert.Empty(t, cfg.ResponseMIMEType)
	assert.Nil(t, cfg.SystemInstruction)
}

func TestGeminiUsage(t *testing.T) {
	assert.Equal(t, Usage{}, geminiUsage(nil))
	assert.Equal(t, Usage{PromptTokens: 12, CompletionTokens: 30, TotalTokens: 42},
		geminiUsage(&genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 30,
			TotalTokenCount:      42,
		}))
}
