package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/logger"
	"review-responder/internal/models"
)

// MockCompleter implements Completer for testing.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, instructions models.Instructions, opts Options) (*Completion, error)
	calls        int
}

func (m *MockCompleter) Complete(ctx context.Context, instructions models.Instructions, opts Options) (*Completion, error) {
	m.calls++
	return m.CompleteFunc(ctx, instructions, opts)
}

func TestWithRetry_ZeroRetriesReturnsSameCompleter(t *testing.T) {
	mock := &MockCompleter{}
	assert.Same(t, mock, WithRetry(mock, "openai", 0, time.Millisecond, logger.NewNoOpLogger()))
}

func TestWithRetry_RetriesUpstreamErrors(t *testing.T) {
	mock := &MockCompleter{}
	mock.CompleteFunc = func(ctx context.Context, _ models.Instructions, _ Options) (*Completion, error) {
		if mock.calls < 3 {
			return nil, apperrors.NewUpstreamError("analysis", errors.New("502"))
		}
		return &Completion{Content: "ok"}, nil
	}

	c := WithRetry(mock, "openai", 2, time.Millisecond, logger.NewTestLogger(t))
	completion, err := c.Complete(context.Background(), models.Instructions{}, Options{Stage: "analysis"})
	require.NoError(t, err)
	assert.Equal(t, "ok", completion.Content)
	assert.Equal(t, 3, mock.calls)
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &MockCompleter{}
	mock.CompleteFunc = func(ctx context.Context, _ models.Instructions, _ Options) (*Completion, error) {
		return nil, apperrors.NewUpstreamTimeoutError("drafting", time.Second)
	}

	c := WithRetry(mock, "openai", 2, time.Millisecond, logger.NewTestLogger(t))
	_, err := c.Complete(context.Background(), models.Instructions{}, Options{Stage: "drafting"})
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
	assert.Equal(t, 3, mock.calls)
}

func TestWithRetry_DoesNotRetryMalformedOrNonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "malformed", err: apperrors.NewUpstreamMalformedError("analysis", "{", errors.New("bad"))},
		{name: "client error", err: func() error {
			e := apperrors.NewUpstreamError("analysis", errors.New("401"))
			e.Retryable = false
			return e
		}()},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockCompleter{}
			mock.CompleteFunc = func(ctx context.Context, _ models.Instructions, _ Options) (*Completion, error) {
				return nil, tt.err
			}

			c := WithRetry(mock, "openai", 3, time.Millisecond, logger.NewTestLogger(t))
			_, err := c.Complete(context.Background(), models.Instructions{}, Options{})
			assert.Equal(t, tt.err, err)
			assert.Equal(t, 1, mock.calls)
		})
	}
}

func TestWithRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	mock := &MockCompleter{}
	mock.CompleteFunc = func(ctx context.Context, _ models.Instructions, _ Options) (*Completion, error) {
		cancel()
		return nil, apperrors.NewUpstreamError("analysis", errors.New("503"))
	}

	c := WithRetry(mock, "openai", 5, time.Hour, logger.NewTestLogger(t))
	_, err := c.Complete(ctx, models.Instructions{}, Options{})
	assert.Error(t, err)
	assert.Equal(t, 1, mock.calls)
}
