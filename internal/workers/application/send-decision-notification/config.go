// internal/workers/application/send-decision-notification/config.go
package senddecisionnotification

import "time"

type Config struct {
	EmailEnabled  bool
	EventsEnabled bool
	FromEmail     string
	AWSRegion     string
	EventTopicARN string
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
