// Package llm is the single gateway to the external completion API. It
// enforces the per-call timeout and turns every transport, status and
// payload problem into the shared error taxonomy.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "review-responder/internal/common/errors"
	httpclient "review-responder/internal/common/http"
	"review-responder/internal/common/logger"
	"review-responder/internal/common/metrics"
	"review-responder/internal/common/observability"
	"review-responder/internal/models"
)

// ErrEmptyCompletion is returned by providers that got a 2xx answer without any content.
var ErrEmptyCompletion = errors.New("completion contained no content")

// Options tune a single completion call.
type Options struct {
	// Structured asks for a single JSON object instead of free text.
	Structured bool
	// Creativity maps to the sampling temperature.
	Creativity float64
	// Stage names the caller in logs, metrics and errors.
	Stage string
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Completion is a successful answer. JSON is set only for structured calls.
type Completion struct {
	Content      string
	JSON         json.RawMessage
	Model        string
	FinishReason string
	Usage        Usage
}

// Completer is what the pipeline stages depend on.
type Completer interface {
	Complete(ctx context.Context, instructions models.Instructions, opts Options) (*Completion, error)
}

// Request is the provider-neutral shape of one call.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSON        bool
}

type Response struct {
	Content      string
	Model        string
	FinishReason string
	Usage        Usage
}

// Provider speaks one vendor's wire protocol.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Client implements Completer on top of a Provider.
type Client struct {
	provider  Provider
	model     string
	maxTokens int
	timeout   time.Duration
	logger    logger.Logger
}

func NewClient(provider Provider, model string, maxTokens int, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    log,
	}
}

// Complete performs exactly one upstream call bounded by the client timeout.
func (c *Client) Complete(ctx context.Context, instructions models.Instructions, opts Options) (*Completion, error) {
	stage := opts.Stage
	if stage == "" {
		stage = "completion"
	}
	mode := "text"
	if opts.Structured {
		mode = "structured"
	}

	ctx, span := observability.StartSpan(ctx, "llm.complete",
		attribute.String("llm.provider", c.provider.Name()),
		attribute.String("llm.model", c.model),
		attribute.String("llm.mode", mode),
		attribute.String("pipeline.stage", stage),
	)
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.provider.Generate(callCtx, &Request{
		Model:       c.model,
		System:      instructions.System,
		User:        instructions.User,
		Temperature: opts.Creativity,
		MaxTokens:   c.maxTokens,
		JSON:        opts.Structured,
	})
	if err != nil {
		stdErr := c.classify(ctx, callCtx, stage, err)
		c.observe(start, mode, stdErr)
		observability.EndSpan(span, stdErr)
		return nil, stdErr
	}

	completion := &Completion{
		Content:      strings.TrimSpace(resp.Content),
		Model:        resp.Model,
		FinishReason: resp.FinishReason,
		Usage:        resp.Usage,
	}

	if opts.Structured {
		raw, err := ExtractJSONObject(resp.Content)
		if err != nil {
			stdErr := apperrors.NewUpstreamMalformedError(stage, resp.Content, err)
			c.observe(start, mode, stdErr)
			observability.EndSpan(span, stdErr)
			return nil, stdErr
		}
		completion.JSON = raw
	} else if completion.Content == "" {
		stdErr := apperrors.NewUpstreamMalformedError(stage, resp.Content, ErrEmptyCompletion)
		c.observe(start, mode, stdErr)
		observability.EndSpan(span, stdErr)
		return nil, stdErr
	}

	c.observe(start, mode, nil)
	c.logger.Debug("Completion received", map[string]interface{}{
		"stage":            stage,
		"provider":         c.provider.Name(),
		"model":            completion.Model,
		"finishReason":     completion.FinishReason,
		"promptTokens":     completion.Usage.PromptTokens,
		"completionTokens": completion.Usage.CompletionTokens,
		"durationMs":       time.Since(start).Milliseconds(),
	})
	observability.EndSpan(span, nil)
	return completion, nil
}

func (c *Client) classify(parent, callCtx context.Context, stage string, err error) *apperrors.StandardError {
	switch {
	case parent.Err() != nil:
		// the caller went away; report it as an upstream failure, not a timeout
		return apperrors.NewUpstreamError(stage, parent.Err())
	case errors.Is(callCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewUpstreamTimeoutError(stage, c.timeout)
	}

	var decodeErr *httpclient.DecodeError
	if errors.As(err, &decodeErr) || errors.Is(err, ErrEmptyCompletion) {
		return apperrors.NewUpstreamMalformedError(stage, "", err)
	}

	stdErr := apperrors.NewUpstreamError(stage, err)
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		stdErr.WithMetadata("statusCode", statusErr.StatusCode)
		// client errors other than rate limiting will not improve on retry
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 && statusErr.StatusCode != 429 {
			stdErr.Retryable = false
		}
	}
	return stdErr
}

func (c *Client) observe(start time.Time, mode string, err *apperrors.StandardError) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(err.Code))
	}
	metrics.CompletionDuration.WithLabelValues(c.provider.Name(), mode, outcome).Observe(time.Since(start).Seconds())
}
