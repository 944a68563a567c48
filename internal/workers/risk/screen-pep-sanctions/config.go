// internal/workers/risk/screen-pep-sanctions/config.go
package screenpepsanctions

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
