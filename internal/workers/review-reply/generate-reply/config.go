// internal/workers/review-reply/generate-reply/config.go
package generatereply

import "time"

type Config struct {
	// Timeout bounds one whole job in worker mode. HTTP requests are bounded
	// by the server's write timeout instead.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 90 * time.Second,
	}
}
