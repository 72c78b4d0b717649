package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithError_AttachesErrorField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithError(errors.New("publish timed out")).Error("Escalation send failed", map[string]interface{}{
		"channel": "sns",
	})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "publish timed out", fields["error"])
	assert.Equal(t, "sns", fields["channel"])
}

func TestWithFields_ErrorValuesAreNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"stage": "analysis"})

	log.Warn("retrying", map[string]interface{}{"cause": errors.New("503")})
	log.Debug("hidden", nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "analysis", fields["stage"])
	assert.Equal(t, "503", fields["cause"])
}
