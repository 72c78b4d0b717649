// internal/workers/review-reply/draft-reply/handler.go
package draftreply

import (
	"context"
	"errors"
	"strings"
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
	StageName = "drafting"
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

// Execute drafts the reply for an accepted analysis. The returned draft
// always ends with the profile's sign-off.
func (h *Handler) Execute(ctx context.Context, profile *models.BusinessProfile, analysis *models.Analysis) (*models.ReplyDraft, error) {
	ctx, span := observability.StartSpan(ctx, "stage.drafting",
		attribute.String("prompt.version", prompts.Version),
		attribute.String("review.sentiment", string(analysis.Sentiment)),
	)
	start := time.Now()

	draft, err := h.execute(ctx, profile, analysis)

	metrics.StageDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())
	if err != nil {
		h.logFailure(err)
		observability.EndSpan(span, err)
		return nil, err
	}

	observability.EndSpan(span, nil)
	return draft, nil
}

func (h *Handler) execute(ctx context.Context, profile *models.BusinessProfile, analysis *models.Analysis) (*models.ReplyDraft, error) {
	instructions, err := prompts.BuildDraftingInstructions(profile, analysis)
	if err != nil {
		return nil, err
	}

	completion, err := h.completer.Complete(ctx, instructions, llm.Options{
		Creativity: h.config.Temperature,
		Stage:      StageName,
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(completion.Content)
	if text == "" {
		return nil, apperrors.NewUpstreamMalformedError(StageName, completion.Content, errors.New("empty draft"))
	}

	text, repaired := EnsureSignOff(text, profile)
	if repaired {
		metrics.SignOffRepairs.Inc()
		h.logger.Warn("Sign-off normalized", map[string]interface{}{
			"signOff": profile.SignOff(),
		})
	}

	hits := FindAvoidPhrases(text, profile.AvoidPhrases)
	for _, phrase := range hits {
		metrics.AvoidPhraseHits.WithLabelValues(phrase).Inc()
	}
	if len(hits) > 0 {
		h.logger.Warn("Draft contains avoided phrases", map[string]interface{}{
			"phrases": hits,
		})
	}

	h.logger.Info("Reply drafted", map[string]interface{}{
		"sentiment":     string(analysis.Sentiment),
		"length":        len([]rune(text)),
		"promptVersion": prompts.Version,
	})

	return &models.ReplyDraft{
		Text:            text,
		AvoidPhraseHits: hits,
		SignOffRepaired: repaired,
	}, nil
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
	h.logger.Error("Drafting failed", fields)
}
