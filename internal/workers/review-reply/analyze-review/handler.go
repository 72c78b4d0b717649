// internal/workers/review-reply/analyze-review/handler.go
package analyzereview

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/llm"
	"review-responder/internal/common/logger"
	"review-responder/internal/common/metrics"
	"review-responder/internal/common/observability"
	"review-responder/internal/models"
	"review-responder/internal/prompts"
)

const (
	StageName = "analysis"
)

type Handler struct {
	config    *Config
	completer llm.Completer
	logger    logger.Logger
}

func NewHandler(config *Config, completer llm.Completer, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config:    config,
		completer: completer,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

// Execute runs the analysis call and returns an analysis that satisfies the
// sentiment and greeting invariants, or an error. Nothing partial is returned.
func (h *Handler) Execute(ctx context.Context, profile *models.BusinessProfile, review models.ReviewInput) (*models.Analysis, error) {
	ctx, span := observability.StartSpan(ctx, "stage.analysis",
		attribute.String("prompt.version", prompts.Version),
	)
	start := time.Now()

	analysis, err := h.execute(ctx, profile, review)

	metrics.StageDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())
	if err != nil {
		h.logFailure(err)
		observability.EndSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("review.sentiment", string(analysis.Sentiment)))
	observability.EndSpan(span, nil)
	return analysis, nil
}

func (h *Handler) execute(ctx context.Context, profile *models.BusinessProfile, review models.ReviewInput) (*models.Analysis, error) {
	instructions := prompts.BuildAnalysisInstructions(profile, review)

	completion, err := h.completer.Complete(ctx, instructions, llm.Options{
		Structured: true,
		Creativity: h.config.Temperature,
		Stage:      StageName,
	})
	if err != nil {
		return nil, err
	}

	data := []byte(completion.JSON)
	if len(data) == 0 {
		raw, err := llm.ExtractJSONObject(completion.Content)
		if err != nil {
			return nil, apperrors.NewUpstreamMalformedError(StageName, completion.Content, err)
		}
		data = raw
	}

	claimed, err := ParseAnalysis(data)
	if err != nil {
		return nil, err
	}

	analysis, repairs, err := Reconcile(*claimed, review)
	if err != nil {
		return nil, err
	}

	for _, kind := range repairs {
		metrics.AnalysisRepairs.WithLabelValues(kind).Inc()
	}
	if len(repairs) > 0 {
		h.logger.Warn("Analysis corrected", map[string]interface{}{
			"repairs":          repairs,
			"claimedSentiment": string(claimed.Sentiment),
			"sentiment":        string(analysis.Sentiment),
		})
	}
	metrics.SentimentsTotal.WithLabelValues(string(analysis.Sentiment)).Inc()

	h.logger.Info("Review analyzed", map[string]interface{}{
		"sentiment":          string(analysis.Sentiment),
		"points":             len(analysis.AllPoints),
		"nameClassification": string(analysis.NameClassification),
		"personalGreeting":   analysis.GreetingName != nil,
		"promptVersion":      prompts.Version,
	})
	return &analysis, nil
}

func (h *Handler) logFailure(err error) {
	stdErr := apperrors.Normalize(err)
	metrics.StageFailures.WithLabelValues(StageName, string(stdErr.Code)).Inc()

	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	}
	if raw, ok := stdErr.Metadata["rawPayload"]; ok {
		fields["rawPayload"] = raw
	}
	h.logger.Error("Analysis failed", fields)
}
