// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/common/logger"
	generatereply "review-responder/internal/workers/review-reply/generate-reply"
)

// Generator is satisfied by the generate-reply handler.
type Generator interface {
	Execute(ctx context.Context, input *generatereply.Input) (*generatereply.Output, error)
}

type replyBody struct {
	DraftReply string `json:"draftReply"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type responderHandler struct {
	generator    Generator
	maxBodyBytes int64
	logger       logger.Logger
}

func (h *responderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	input, err := h.decode(w, r)
	if err == nil {
		var out *generatereply.Output
		out, err = h.generator.Execute(r.Context(), input)
		if err == nil {
			writeJSON(w, http.StatusOK, replyBody{DraftReply: out.DraftReply})
			return
		}
	}

	stdErr := apperrors.Normalize(err)
	h.logger.Warn("Reply request failed", map[string]interface{}{
		"requestId": RequestID(r.Context()),
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
	writeJSON(w, apperrors.HTTPStatus(stdErr.Code), errorBody{
		Error:   stdErr.Message,
		Details: stdErr.Details,
	})
}

func (h *responderHandler) decode(w http.ResponseWriter, r *http.Request) (*generatereply.Input, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("read request body: %v", err))
	}

	result, err := responderRequestSchema.ValidateBytes(body)
	if err != nil {
		return nil, apperrors.NewValidationError("request body must be a JSON object")
	}
	if !result.Valid {
		return nil, apperrors.NewValidationError(result.Error())
	}

	var input generatereply.Input
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("decode request body: %v", err))
	}
	return &input, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ReadinessChecker is satisfied by the Zeebe client.
type ReadinessChecker interface {
	HealthCheck(ctx context.Context) error
}

func readyHandler(checker ReadinessChecker, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.HealthCheck(r.Context()); err != nil {
				log.Warn("readiness check failed", map[string]interface{}{"error": err})
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
