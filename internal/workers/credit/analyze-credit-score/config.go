// internal/workers/credit/analyze-credit-score/config.go
package analyzecreditscore

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
