// internal/workers/review-reply/analyze-review/config.go
package analyzereview

type Config struct {
	// Temperature is kept low so the classification is stable.
	Temperature float64
}

func LoadConfig() *Config {
	return &Config{
		Temperature: 0.2,
	}
}
