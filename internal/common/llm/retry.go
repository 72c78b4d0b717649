package llm

import (
	"context"
	"errors"
	"time"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/logger"
	"review-responder/internal/common/metrics"
	"review-responder/internal/models"
)

// retryingCompleter re-issues a call after a retryable upstream failure.
// Malformed payloads are never retried.
type retryingCompleter struct {
	next       Completer
	provider   string
	maxRetries int
	baseDelay  time.Duration
	logger     logger.Logger
}

// WithRetry wraps next with exponential backoff. maxRetries <= 0 returns next unchanged.
func WithRetry(next Completer, provider string, maxRetries int, baseDelay time.Duration, log logger.Logger) Completer {
	if maxRetries <= 0 {
		return next
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &retryingCompleter{
		next:       next,
		provider:   provider,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     log,
	}
}

func (r *retryingCompleter) Complete(ctx context.Context, instructions models.Instructions, opts Options) (*Completion, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := r.baseDelay * time.Duration(1<<(attempt-1))
			r.logger.Warn("Retrying completion", map[string]interface{}{
				"stage":   opts.Stage,
				"attempt": attempt,
				"backoff": backoff.String(),
				"error":   lastErr.Error(),
			})
			metrics.CompletionRetries.WithLabelValues(r.provider).Inc()

			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(backoff):
			}
		}

		completion, err := r.next.Complete(ctx, instructions, opts)
		if err == nil {
			return completion, nil
		}
		lastErr = err

		if !isRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func isRetryable(err error) bool {
	var stdErr *apperrors.StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == apperrors.ErrCodeUpstreamFailed && stdErr.Retryable
}
