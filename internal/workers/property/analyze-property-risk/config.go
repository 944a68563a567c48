// internal/workers/property/analyze-property-risk/config.go
package analyzepropertyrisk

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
