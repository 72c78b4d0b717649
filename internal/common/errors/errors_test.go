package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExternalServiceError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewExternalServiceError("zeebe", cause)

	assert.True(t, stderrors.Is(err, ErrExternalService))
	assert.False(t, stderrors.Is(err, ErrUpstream))
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, err.Retryable)
	assert.Equal(t, "connection refused", err.Details)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err.Code))
	assert.Equal(t, 1, GetRetryCount(err.Code))

	wrapped := fmt.Errorf("startup: %w", err)
	assert.Equal(t, ErrCodeExternalService, Normalize(wrapped).Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeUpstreamFailed, http.StatusInternalServerError},
		{ErrCodeUpstreamMalformed, http.StatusInternalServerError},
		{ErrCodeAnalysisIncomplete, http.StatusInternalServerError},
		{ErrCodeExternalService, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestNormalize_UnknownErrorIsInternal(t *testing.T) {
	err := Normalize(stderrors.New("boom"))

	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.Equal(t, "boom", err.Details)
	assert.Nil(t, Normalize(nil))
}

func TestConvertToBPMNError_ExternalServiceKeepsCode(t *testing.T) {
	bpmn := ConvertToBPMNError(NewExternalServiceError("aws", stderrors.New("no credentials")))

	assert.Equal(t, string(ErrCodeExternalService), bpmn.Code)
	assert.Equal(t, 1, bpmn.Retries)
	assert.Equal(t, string(ErrCodeExternalService), bpmn.ErrorVariables["originalErrorCode"])
}
