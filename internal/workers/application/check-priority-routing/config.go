// internal/workers/application/check-priority-routing/config.go
package checkpriorityrouting

import "time"

type Config struct {
	CacheTTL       time.Duration
	Timeout        time.Duration
	JumboThreshold float64
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL:       30 * time.Minute,
		Timeout:        10 * time.Second,
		JumboThreshold: 766550,
	}
}
