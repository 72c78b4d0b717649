// internal/workers/review-reply/generate-reply/handler.go
package generatereply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/logger"
	"review-responder/internal/common/metrics"
	"review-responder/internal/common/observability"
	"review-responder/internal/models"
	"review-responder/internal/prompts"
)

const (
	TaskType = "generate-review-reply"
)

// Analyzer is satisfied by the analyze-review handler.
type Analyzer interface {
	Execute(ctx context.Context, profile *models.BusinessProfile, review models.ReviewInput) (*models.Analysis, error)
}

// Drafter is satisfied by the draft-reply handler.
type Drafter interface {
	Execute(ctx context.Context, profile *models.BusinessProfile, analysis *models.Analysis) (*models.ReplyDraft, error)
}

// Notifier is satisfied by the notify-escalation handler.
type Notifier interface {
	Notify(ctx context.Context, esc *models.Escalation) (*models.EscalationResult, error)
}

type HandlerOptions struct {
	Config        *Config
	Profile       *models.BusinessProfile
	Analyzer      Analyzer
	Drafter       Drafter
	Notifier      Notifier
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config       *Config
	profile      *models.BusinessProfile
	analyzer     Analyzer
	drafter      Drafter
	notifier     Notifier
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler

	escalations sync.WaitGroup
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Profile == nil {
		return nil, errors.New("business profile is required")
	}
	if err := opts.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid business profile: %w", err)
	}
	if opts.Analyzer == nil || opts.Drafter == nil {
		return nil, errors.New("analyzer and drafter are required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Config == nil {
		opts.Config = LoadConfig()
	}

	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       opts.Config,
		profile:      opts.Profile,
		analyzer:     opts.Analyzer,
		drafter:      opts.Drafter,
		notifier:     opts.Notifier,
		obs:          opts.Observability,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}, nil
}

// Execute runs analysis and then drafting for one review. Either the full
// output or an error is returned; the stages are never retried here.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, SourceHTTP, input)
}

func (h *Handler) execute(ctx context.Context, source string, input *Input) (*Output, error) {
	metrics.ReplyRequestsActive.WithLabelValues(source).Inc()
	defer metrics.ReplyRequestsActive.WithLabelValues(source).Dec()

	ctx, span := observability.StartSpan(ctx, "pipeline.generate_reply",
		attribute.String("request.source", source),
	)
	start := time.Now()

	output, analysis, err := h.run(ctx, input)

	status := "success"
	sentiment := ""
	if err != nil {
		status = string(apperrors.Normalize(err).Code)
	} else {
		sentiment = string(output.Sentiment)
	}
	metrics.ReplyRequestsTotal.WithLabelValues(source, status).Inc()
	h.obs.RecordReplyProcessed(ctx, status, sentiment)
	h.obs.RecordReplyDuration(ctx, time.Since(start), status)
	observability.EndSpan(span, err)

	if err != nil {
		return nil, err
	}

	h.logger.Info("Reply generated", map[string]interface{}{
		"source":           source,
		"sentiment":        sentiment,
		"personalGreeting": analysis.GreetingName != nil,
		"durationMs":       time.Since(start).Milliseconds(),
	})

	if analysis.Sentiment != models.SentimentPositive {
		h.escalate(ctx, input, analysis, output)
	}
	return output, nil
}

func (h *Handler) run(ctx context.Context, input *Input) (*Output, *models.Analysis, error) {
	if input == nil {
		return nil, nil, apperrors.NewValidationError("request body is required")
	}
	review := models.ReviewInput{Text: input.ReviewText, AuthorName: input.AuthorName}.Normalized()
	if err := review.Validate(); err != nil {
		return nil, nil, err
	}

	analysis, err := h.analyzer.Execute(ctx, h.profile, review)
	if err != nil {
		return nil, nil, err
	}

	draft, err := h.drafter.Execute(ctx, h.profile, analysis)
	if err != nil {
		return nil, nil, err
	}

	return &Output{
		DraftReply:    draft.Text,
		Sentiment:     analysis.Sentiment,
		PromptVersion: prompts.Version,
	}, analysis, nil
}

// escalate hands the review to the notifier in the background. The reply
// does not wait for it and is not affected by its outcome.
func (h *Handler) escalate(ctx context.Context, input *Input, analysis *models.Analysis, output *Output) {
	if h.notifier == nil {
		return
	}

	esc := &models.Escalation{
		BusinessName:      h.profile.BusinessName,
		Sentiment:         analysis.Sentiment,
		ReviewText:        input.ReviewText,
		AuthorName:        input.AuthorName,
		MainNegativePoint: models.Deref(analysis.MainNegativePoint),
		DraftReply:        output.DraftReply,
	}

	h.escalations.Add(1)
	go func() {
		defer h.escalations.Done()

		result, err := h.notifier.Notify(context.WithoutCancel(ctx), esc)
		if err != nil {
			h.logger.Warn("Escalation not delivered", map[string]interface{}{
				"error": err,
			})
			return
		}
		h.logger.Debug("Escalation processed", map[string]interface{}{
			"notificationId": result.ID,
			"status":         result.Status,
		})
	}()
}

// Wait blocks until background escalations have finished.
func (h *Handler) Wait() {
	h.escalations.Wait()
}

// Handle runs the pipeline as a Zeebe job.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, SourceZeebe, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}
