// internal/common/config/config.go
package config

import "review-responder/internal/models"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	LLM           LLMConfig               `mapstructure:"llm"`
	Profile       ProfileConfig           `mapstructure:"profile"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig drives the HTTP boundary. Timeouts are in milliseconds.
type ServerConfig struct {
	Port            int   `mapstructure:"port"`
	ReadTimeout     int   `mapstructure:"read_timeout"`
	WriteTimeout    int   `mapstructure:"write_timeout"`
	ShutdownTimeout int   `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64 `mapstructure:"max_body_bytes"`
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider            string  `mapstructure:"provider"`
	Model               string  `mapstructure:"model"`
	APIKey              string  `mapstructure:"api_key"`
	BaseURL             string  `mapstructure:"base_url"`
	Timeout             int     `mapstructure:"timeout"` // milliseconds, per call
	MaxRetries          int     `mapstructure:"max_retries"`
	RetryBaseDelay      int     `mapstructure:"retry_base_delay"` // milliseconds
	MaxTokens           int     `mapstructure:"max_tokens"`
	AnalysisTemperature float64 `mapstructure:"analysis_temperature"`
	DraftingTemperature float64 `mapstructure:"drafting_temperature"`
}

// ProfileConfig is the business voice every reply is written in.
type ProfileConfig struct {
	BusinessName              string   `mapstructure:"business_name"`
	ResponderName             string   `mapstructure:"responder_name"`
	ResponseTone              string   `mapstructure:"response_tone"`
	Language                  string   `mapstructure:"language"`
	StyleExamples             []string `mapstructure:"style_examples"`
	AvoidPhrases              []string `mapstructure:"avoid_phrases"`
	ServiceRecoveryOffer      string   `mapstructure:"service_recovery_offer"`
	OfflineContactInstruction string   `mapstructure:"offline_contact_instruction"`
}

// BusinessProfile converts the configured profile into the model the pipeline consumes.
func (p ProfileConfig) BusinessProfile() *models.BusinessProfile {
	return &models.BusinessProfile{
		BusinessName:              p.BusinessName,
		ResponderName:             p.ResponderName,
		ResponseTone:              p.ResponseTone,
		Language:                  p.Language,
		StyleExamples:             append([]string(nil), p.StyleExamples...),
		AvoidPhrases:              append([]string(nil), p.AvoidPhrases...),
		ServiceRecoveryOffer:      p.ServiceRecoveryOffer,
		OfflineContactInstruction: p.OfflineContactInstruction,
	}
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every job worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// NotificationConfig holds settings for the escalation notifier.
type NotificationConfig struct {
	Escalation struct {
		Enabled   bool   `mapstructure:"enabled"`
		Region    string `mapstructure:"region"`
		TopicARN  string `mapstructure:"topic_arn"`
		EmailTo   string `mapstructure:"email_to"`
		FromEmail string `mapstructure:"from_email"`
		Timeout   int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"escalation"`
}

// ObservabilityConfig toggles metrics and tracing exporters.
type ObservabilityConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
