// internal/workers/review-reply/notify-escalation/handler.go
package notifyescalation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	commonaws "review-responder/internal/common/aws"
	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/logger"
	"review-responder/internal/common/metrics"
	"review-responder/internal/models"
)

const (
	TaskType = "notify-review-escalation"
)

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

// TopicPublisher is satisfied by *aws.SNSClient.
type TopicPublisher interface {
	PublishMessage(ctx context.Context, topicARN, subject, message string) (string, error)
}

type Handler struct {
	config       *Config
	email        EmailSender
	topic        TopicPublisher
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler builds AWS clients for the configured channels. A disabled
// notifier makes no AWS calls at all.
func NewHandler(ctx context.Context, config *Config, log logger.Logger) (*Handler, error) {
	if config == nil {
		config = LoadConfig()
	}
	if !config.Enabled {
		return NewHandlerWithClients(config, nil, nil, log), nil
	}

	awsCfg, err := commonaws.LoadConfig(ctx, config.Region)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("aws", err)
	}

	var email EmailSender
	if len(config.EmailTo) > 0 {
		email = commonaws.NewSESClient(awsCfg)
	}
	var topic TopicPublisher
	if config.TopicARN != "" {
		topic = commonaws.NewSNSClient(awsCfg)
	}
	return NewHandlerWithClients(config, email, topic, log), nil
}

func NewHandlerWithClients(config *Config, email EmailSender, topic TopicPublisher, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		email:        email,
		topic:        topic,
		logger:       l,
		errorHandler: apperrors.NewErrorHandler(l),
	}
}

// Notify forwards a negative or mixed review to the quality team. It returns
// an error only when every configured channel failed.
func (h *Handler) Notify(ctx context.Context, esc *models.Escalation) (*models.EscalationResult, error) {
	if esc.ID == "" {
		esc.ID = uuid.New().String()
	}
	if esc.CreatedAt == "" {
		esc.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	result := &models.EscalationResult{ID: esc.ID}

	if !h.config.Enabled {
		result.Status = models.EscalationDisabled
		return result, nil
	}
	if esc.Sentiment == models.SentimentPositive {
		result.Status = models.EscalationSkipped
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	data := templateData(esc)
	subject := renderTemplate(subjectTemplate, data)
	body := renderTemplate(bodyTemplate, data)

	var lastErr error
	if h.topic != nil && h.config.TopicARN != "" {
		if err := h.send(models.ChannelTopic, func() (string, error) {
			return h.topic.PublishMessage(ctx, h.config.TopicARN, subject, body)
		}); err != nil {
			lastErr = apperrors.NewNotificationSendFailedError(models.ChannelTopic, err)
		} else {
			result.Channels = append(result.Channels, models.ChannelTopic)
		}
	}
	if h.email != nil && len(h.config.EmailTo) > 0 {
		if err := h.send(models.ChannelEmail, func() (string, error) {
			return h.email.SendText(ctx, h.config.FromEmail, h.config.EmailTo, subject, body)
		}); err != nil {
			lastErr = apperrors.NewNotificationSendFailedError(models.ChannelEmail, err)
		} else {
			result.Channels = append(result.Channels, models.ChannelEmail)
		}
	}

	switch {
	case len(result.Channels) > 0:
		result.Status = models.EscalationSent
		result.SentAt = time.Now().UTC().Format(time.RFC3339)
	case lastErr != nil:
		result.Status = models.EscalationFailed
		return result, lastErr
	default:
		result.Status = models.EscalationDisabled
	}
	return result, nil
}

func (h *Handler) send(channel string, fn func() (string, error)) error {
	messageID, err := fn()
	if err != nil {
		metrics.EscalationsTotal.WithLabelValues(channel, "failed").Inc()
		h.logger.WithError(err).Error("Escalation send failed", map[string]interface{}{
			"channel": channel,
		})
		return err
	}

	metrics.EscalationsTotal.WithLabelValues(channel, "sent").Inc()
	h.logger.Info("Escalation sent", map[string]interface{}{
		"channel":   channel,
		"messageId": messageID,
	})
	return nil
}

// Handle runs Notify as a Zeebe job.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx := context.Background()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.Notify(ctx, &input.Escalation)
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

func templateData(esc *models.Escalation) map[string]interface{} {
	author := esc.AuthorName
	if strings.TrimSpace(author) == "" {
		author = "(not provided)"
	}
	negative := esc.MainNegativePoint
	if negative == "" {
		negative = "(none)"
	}
	return map[string]interface{}{
		"id":                esc.ID,
		"businessName":      esc.BusinessName,
		"sentiment":         string(esc.Sentiment),
		"authorName":        author,
		"reviewText":        esc.ReviewText,
		"mainNegativePoint": negative,
		"draftReply":        esc.DraftReply,
		"createdAt":         esc.CreatedAt,
	}
}

// renderTemplate replaces {{key}} placeholders in one pass, so review text
// that happens to contain braces is left untouched.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		value := ""
		if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		pairs = append(pairs, "{{"+k+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
