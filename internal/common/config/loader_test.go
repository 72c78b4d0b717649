package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndBuiltInProfile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := writeConfig(t, "app:\n  name: review-responder\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4-turbo", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 30000, cfg.LLM.Timeout)
	assert.Equal(t, 0, cfg.LLM.MaxRetries)
	assert.InDelta(t, 0.2, cfg.LLM.AnalysisTemperature, 1e-9)
	assert.InDelta(t, 0.7, cfg.LLM.DraftingTemperature, 1e-9)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Camunda.Enabled)

	assert.Equal(t, "Олена", cfg.Profile.ResponderName)
	assert.Equal(t, "MEDIKOM на Оболонській набережній", cfg.Profile.BusinessName)
	assert.Len(t, cfg.Profile.StyleExamples, 3)
	assert.Contains(t, cfg.Profile.AvoidPhrases, "ми в захваті")
}

func TestLoadFromFile_ProfileFromYAML(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := writeConfig(t, `
profile:
  business_name: Bakery
  responder_name: Sam
  style_examples: ["Thanks so much!"]
  avoid_phrases: ["we are thrilled"]
  service_recovery_offer: Our manager will look into it.
  offline_contact_instruction: Call us at 555-0100.
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	profile := cfg.Profile.BusinessProfile()
	assert.Equal(t, "Bakery", profile.BusinessName)
	assert.Equal(t, "- Sam", profile.SignOff())
	assert.True(t, profile.HasOfflineContact())
	assert.Equal(t, "Ukrainian", profile.Language)
	assert.Equal(t, []string{"we are thrilled"}, profile.AvoidPhrases)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("MY_LLM_KEY", "sk-expanded")

	path := writeConfig(t, "llm:\n  api_key: ${MY_LLM_KEY}\n  model: gpt-4o-mini\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-expanded", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadFromFile_EnvironmentOverridesKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "gpt-4o")

	path := writeConfig(t, "llm:\n  model: gpt-4-turbo\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		body    string
		wantErr string
	}{
		{
			name:    "missing api key",
			env:     map[string]string{"OPENAI_API_KEY": ""},
			body:    "app:\n  name: x\n",
			wantErr: "llm.api_key is required",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"OPENAI_API_KEY": "sk"},
			body:    "llm:\n  provider: llama\n  api_key: k\n",
			wantErr: "not supported",
		},
		{
			name:    "profile without responder",
			env:     map[string]string{"OPENAI_API_KEY": "sk"},
			body:    "profile:\n  business_name: Bakery\n  service_recovery_offer: x\n",
			wantErr: "responder name is required",
		},
		{
			name:    "escalation without destination",
			env:     map[string]string{"OPENAI_API_KEY": "sk"},
			body:    "notifications:\n  escalation:\n    enabled: true\n",
			wantErr: "topic_arn or email_to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_FallsBackToCamundaDefaults(t *testing.T) {
	cfg := &Config{Camunda: CamundaConfig{MaxJobsActive: 7, Timeout: 1234}}

	wc := GetWorkerConfig(cfg, "generate-review-reply")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 7, wc.MaxJobsActive)
	assert.Equal(t, 1234, wc.Timeout)
	assert.True(t, IsWorkerEnabled(cfg, "generate-review-reply"))

	cfg.Workers = map[string]WorkerConfig{"generate-review-reply": {Enabled: false}}
	assert.False(t, IsWorkerEnabled(cfg, "generate-review-reply"))
}
