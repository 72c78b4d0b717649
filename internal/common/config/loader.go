// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// expands ${VAR} placeholders and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it
// even when the YAML file does not mention it (e.g. LLM_MODEL).
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "review-responder")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10000)
	v.SetDefault("server.write_timeout", 90000)
	v.SetDefault("server.shutdown_timeout", 15000)
	v.SetDefault("server.max_body_bytes", 64*1024)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4-turbo")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.timeout", 30000)
	v.SetDefault("llm.max_retries", 0)
	v.SetDefault("llm.retry_base_delay", 500)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.analysis_temperature", 0.2)
	v.SetDefault("llm.drafting_temperature", 0.7)

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "localhost:26500")
	v.SetDefault("camunda.max_jobs_active", 5)
	v.SetDefault("camunda.timeout", 90000)
	v.SetDefault("camunda.request_timeout", 30000)

	v.SetDefault("notifications.escalation.enabled", false)
	v.SetDefault("notifications.escalation.region", "eu-central-1")
	v.SetDefault("notifications.escalation.topic_arn", "")
	v.SetDefault("notifications.escalation.email_to", "")
	v.SetDefault("notifications.escalation.from_email", "")
	v.SetDefault("notifications.escalation.timeout", 5000)

	v.SetDefault("observability.metrics_enabled", true)
	v.SetDefault("observability.service_name", "review-responder")
	v.SetDefault("observability.jaeger_endpoint", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot looks for go.mod in the working directory and its parents.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional variable names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "gemini":
			cfg.LLM.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		default:
			cfg.LLM.APIKey = firstEnv("OPENAI_API_KEY")
		}
	}
	if val := os.Getenv("PORT"); val != "" {
		var port int
		if _, err := fmt.Sscanf(val, "%d", &port); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

// applyDefaults covers what viper defaults cannot: zero values written
// explicitly in YAML and the built-in business profile.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 64 * 1024
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 30000
	}
	if cfg.LLM.RetryBaseDelay <= 0 {
		cfg.LLM.RetryBaseDelay = 500
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel(cfg.LLM.Provider)
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 5
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 90000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if worker.Timeout == 0 {
			worker.Timeout = cfg.Camunda.Timeout
		}
		cfg.Workers[key] = worker
	}

	if cfg.Notifications.Escalation.Timeout <= 0 {
		cfg.Notifications.Escalation.Timeout = 5000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	applyProfileDefaults(&cfg.Profile)
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-2.5-flash"
	}
	return "gpt-4-turbo"
}

// applyProfileDefaults installs the MEDIKOM profile when no business is
// configured and fills tone and language otherwise.
func applyProfileDefaults(p *ProfileConfig) {
	if strings.TrimSpace(p.BusinessName) == "" && strings.TrimSpace(p.ResponderName) == "" {
		*p = DefaultProfile()
		return
	}
	def := DefaultProfile()
	if p.ResponseTone == "" {
		p.ResponseTone = def.ResponseTone
	}
	if p.Language == "" {
		p.Language = def.Language
	}
}

// DefaultProfile is the clinic the service was first built for.
func DefaultProfile() ProfileConfig {
	return ProfileConfig{
		BusinessName:  "MEDIKOM на Оболонській набережній",
		ResponderName: "Олена",
		ResponseTone:  "Теплий, дружній та щирий",
		Language:      "Ukrainian",
		StyleExamples: []string{
			"Дякуємо вам за довіру та такий теплий відгук! Раді, що консультація у лікаря-отоларинголога Віктора Петровича Товстолита була для вас корисною та допомогла розібратись у ситуації. Бажаємо вам міцного здоров’я!",
			"Добрий день, пані Лідіє! Щиро дякуємо за Ваш відгук та високу оцінку стаціонара на Оболонській набережній. Нам дуже приємно знати, що Ви залишилися задоволені візитом. Бажаємо Вам міцного здоров’я та гарного настрою! Завжди раді бачити Вас у MEDIKOM на Оболонській набережній.",
			"Владиславе, дякуємо вам за довіру і зворотній зв'язок! Костянтин Едуардович - наш провідний фахівець в оперативній урології. Пишаємось своєю командою і радіємо, коли можемо допомогти нашим пацієнтам!",
		},
		AvoidPhrases: []string{
			"ми в захваті",
			"дякуємо, що знайшли час",
			"Це чудово",
			"Це велике задоволення",
		},
		ServiceRecoveryOffer: "Вашою скаргою займається Заступник медичного директора з якості.",
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	switch cfg.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider %q is not supported", cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if cfg.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}

	if err := cfg.Profile.BusinessProfile().Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	esc := cfg.Notifications.Escalation
	if esc.Enabled {
		if esc.TopicARN == "" && esc.EmailTo == "" {
			return fmt.Errorf("notifications.escalation needs topic_arn or email_to")
		}
		if esc.EmailTo != "" && esc.FromEmail == "" {
			return fmt.Errorf("notifications.escalation.from_email is required for email delivery")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to the camunda defaults.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
		MaxRetries:    1,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled.
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
