package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/logger"
	"review-responder/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func chatResponse(content string) string {
	resp := map[string]interface{}{
		"model": "gpt-4-turbo",
		"choices": []map[string]interface{}{
			{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func newTestClient(t *testing.T, serverURL string, timeout time.Duration) *Client {
	t.Helper()
	provider := NewOpenAIProvider("sk-test", serverURL, timeout)
	return NewClient(provider, "gpt-4-turbo", 0, timeout, logger.NewTestLogger(t))
}

var testInstructions = models.Instructions{System: "You are a test.", User: "Say hi."}

// ==========================
// Request Shape Tests
// ==========================

func TestClient_Complete_SendsChatRequest(t *testing.T) {
	var captured openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(chatResponse(`{"ok": true}`)))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)
	completion, err := client.Complete(context.Background(), testInstructions, Options{
		Structured: true,
		Creativity: 0.2,
		Stage:      "analysis",
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4-turbo", captured.Model)
	assert.InDelta(t, 0.2, captured.Temperature, 1e-9)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "You are a test.", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)

	assert.JSONEq(t, `{"ok": true}`, string(completion.JSON))
	assert.Equal(t, 15, completion.Usage.TotalTokens)
	assert.Equal(t, "stop", completion.FinishReason)
}

func TestClient_Complete_TextModeOmitsResponseFormat(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(chatResponse("  Дякуємо!\n\n- Олена  ")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)
	completion, err := client.Complete(context.Background(), testInstructions, Options{Creativity: 0.7, Stage: "drafting"})
	require.NoError(t, err)

	_, hasFormat := raw["response_format"]
	assert.False(t, hasFormat)
	assert.Equal(t, "Дякуємо!\n\n- Олена", completion.Content)
	assert.Nil(t, completion.JSON)
}

// ==========================
// Structured Output Tests
// ==========================

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "plain object", content: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced with language", content: "```json\n{\"a\": 1}\n```", want: `{"a":1}`},
		{name: "fenced without language", content: "```\n{\"a\": 1}\n```", want: `{"a":1}`},
		{name: "preamble", content: "Here you go:\n{\"a\": [1, 2]}", want: `{"a":[1,2]}`},
		{name: "array", content: `[1, 2]`, wantErr: true},
		{name: "prose", content: "I cannot help with that.", wantErr: true},
		{name: "truncated", content: `{"a": 1`, wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestClient_Complete_StructuredMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("Sorry, I can't produce JSON today.")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)
	_, err := client.Complete(context.Background(), testInstructions, Options{Structured: true, Stage: "analysis"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamMalformed))

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, "Sorry, I can't produce JSON today.", stdErr.Metadata["rawPayload"])
	assert.Equal(t, apperrors.MessageServiceUnavailable, stdErr.Message)
}

func TestClient_Complete_EmptyChoicesIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)
	_, err := client.Complete(context.Background(), testInstructions, Options{Stage: "drafting"})
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamMalformed))
}

func TestClient_Complete_UndecodableBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2*time.Second)
	_, err := client.Complete(context.Background(), testInstructions, Options{Stage: "drafting"})
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamMalformed))
}

// ==========================
// Upstream Failure Tests
// ==========================

func TestClient_Complete_Non2xxIsUpstreamError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{name: "server error", status: http.StatusInternalServerError, wantRetryable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, wantRetryable: true},
		{name: "bad key", status: http.StatusUnauthorized, wantRetryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": {"message": "nope"}}`))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, 2*time.Second)
			_, err := client.Complete(context.Background(), testInstructions, Options{Stage: "analysis"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrUpstream))

			stdErr := apperrors.Normalize(err)
			assert.Equal(t, tt.status, stdErr.Metadata["statusCode"])
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
			assert.Contains(t, stdErr.Details, "nope")
		})
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 100*time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), testInstructions, Options{Stage: "analysis"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
	assert.Equal(t, true, apperrors.Normalize(err).Metadata["timeout"])
}

func TestClient_Complete_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url, time.Second)
	_, err := client.Complete(context.Background(), testInstructions, Options{Stage: "analysis"})
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
}

func TestClient_Complete_CallerCancellation(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		// drain the body so the server notices the client disconnecting
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	client := newTestClient(t, server.URL, 5*time.Second)
	_, err := client.Complete(ctx, testInstructions, Options{Stage: "analysis"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstream))
	assert.Nil(t, apperrors.Normalize(err).Metadata["timeout"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// ==========================
// Factory Tests
// ==========================

func TestNewCompleter_UnknownProvider(t *testing.T) {
	_, err := NewCompleter(context.Background(), Config{Provider: "llama"}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestNewCompleter_WrapsRetryOnlyWhenConfigured(t *testing.T) {
	c, err := NewCompleter(context.Background(), Config{Provider: "openai", APIKey: "k", Timeout: time.Second}, logger.NewNoOpLogger())
	require.NoError(t, err)
	_, isClient := c.(*Client)
	assert.True(t, isClient)

	c, err = NewCompleter(context.Background(), Config{Provider: "openai", APIKey: "k", Timeout: time.Second, MaxRetries: 2}, logger.NewNoOpLogger())
	require.NoError(t, err)
	_, isRetry := c.(*retryingCompleter)
	assert.True(t, isRetry)
}
