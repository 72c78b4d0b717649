// Package errors provides the standardized error taxonomy shared by the reply
// pipeline, the HTTP boundary and the BPMN job worker.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUpstreamFailed     ErrorCode = "UPSTREAM_ERROR"
	ErrCodeUpstreamMalformed  ErrorCode = "UPSTREAM_MALFORMED"
	ErrCodeAnalysisIncomplete ErrorCode = "ANALYSIS_INCOMPLETE"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeExternalService        ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages. Low-level causes go to Details.
const (
	MessageInvalidRequest     = "Review text is required."
	MessageServiceUnavailable = "AI service is currently unavailable."
	MessageAnalysisIncomplete = "AI service could not analyze the review."
	MessageInternal           = "Unexpected error"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches on the error code so that errors.Is works against the sentinels below.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &StandardError{Code: ErrCodeValidationFailed}
	ErrUpstream           = &StandardError{Code: ErrCodeUpstreamFailed}
	ErrUpstreamMalformed  = &StandardError{Code: ErrCodeUpstreamMalformed}
	ErrAnalysisIncomplete = &StandardError{Code: ErrCodeAnalysisIncomplete}
	ErrExternalService    = &StandardError{Code: ErrCodeExternalService}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError reports caller input that cannot be processed.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   MessageInvalidRequest,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError wraps a transport failure or non-2xx answer from the completion API.
func NewUpstreamError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFailed,
		Message:   MessageServiceUnavailable,
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, errText(err)),
		Retryable: true,
		Metadata:  map[string]interface{}{"stage": stage},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUpstreamTimeoutError is an UpstreamError raised when the per-call deadline elapsed.
func NewUpstreamTimeoutError(stage string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFailed,
		Message:   MessageServiceUnavailable,
		Details:   fmt.Sprintf("stage: %s, completion call exceeded %s timeout", stage, timeout),
		Retryable: true,
		Metadata:  map[string]interface{}{"stage": stage, "timeout": true},
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamMalformedError reports a completion that could not be used as returned.
// The raw payload is kept in Metadata for logging, never in the user-facing message.
func NewUpstreamMalformedError(stage, raw string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamMalformed,
		Message:   MessageServiceUnavailable,
		Details:   fmt.Sprintf("stage: %s, malformed completion: %s", stage, errText(err)),
		Retryable: false,
		Metadata:  map[string]interface{}{"stage": stage, "rawPayload": raw},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAnalysisIncompleteError reports an analysis with no usable main point.
func NewAnalysisIncompleteError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisIncomplete,
		Message:   MessageAnalysisIncomplete,
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"stage": "analysis"},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, errText(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   errText(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

// ==========================
// 4. Normalization & Mapping
// ==========================

// Normalize returns err as a StandardError, wrapping anything unknown as INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MessageInternal,
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HTTPStatus maps an error code to the status returned by the HTTP boundary.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:       "REVIEW_INVALID",
	ErrCodeUpstreamFailed:         "LLM_UNAVAILABLE",
	ErrCodeUpstreamMalformed:      "LLM_MALFORMED",
	ErrCodeAnalysisIncomplete:     "ANALYSIS_INCOMPLETE",
	ErrCodeNotificationSendFailed: "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the number of engine-level job retries for a code.
// The pipeline itself never retries across stages.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUpstreamFailed, ErrCodeExternalService, ErrCodeNotificationSendFailed:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "UPSTREAM"), strings.Contains(codeStr, "ANALYSIS"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "EXTERNAL"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
