// internal/workers/review-reply/notify-escalation/config.go
package notifyescalation

import (
	"strings"
	"time"
)

type Config struct {
	Enabled   bool
	Region    string
	TopicARN  string
	EmailTo   []string
	FromEmail string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Region:  "eu-central-1",
		Timeout: 5 * time.Second,
	}
}

// SplitRecipients parses a comma separated address list.
func SplitRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
