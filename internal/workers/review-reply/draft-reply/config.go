// internal/workers/review-reply/draft-reply/config.go
package draftreply

type Config struct {
	// Temperature is higher than analysis so generic greetings vary.
	Temperature float64
}

func LoadConfig() *Config {
	return &Config{
		Temperature: 0.7,
	}
}
