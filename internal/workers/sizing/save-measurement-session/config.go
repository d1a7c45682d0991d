// internal/workers/sizing/save-measurement-session/config.go
package savemeasurementsession

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
