// internal/workers/sizing/list-measurement-sessions/config.go
package listmeasurementsessions

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		DefaultLimit: 20,
	}
}
