package llm

import (
	"context"
	"strings"
	"time"

	httpclient "review-responder/internal/common/http"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
}

func NewOpenAIProvider(apiKey, baseURL string, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		// the per-call deadline is enforced by Client through the context;
		// this only guards against a context that never expires
		http: httpclient.NewClient(timeout + 5*time.Second),
	}
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (o *OpenAIProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	apiReq := openAIRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		apiReq.Messages = append(apiReq.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	apiReq.Messages = append(apiReq.Messages, openAIMessage{Role: "user", Content: req.User})
	if req.JSON {
		apiReq.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	var apiResp openAIResponse
	err := o.http.PostJSON(ctx, o.baseURL+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	}, apiReq, &apiResp)
	if err != nil {
		return nil, err
	}

	if len(apiResp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	model := apiResp.Model
	if model == "" {
		model = req.Model
	}
	return &Response{
		Content:      apiResp.Choices[0].Message.Content,
		Model:        model,
		FinishReason: apiResp.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     apiResp.Usage.PromptTokens,
			CompletionTokens: apiResp.Usage.CompletionTokens,
			TotalTokens:      apiResp.Usage.TotalTokens,
		},
	}, nil
}
