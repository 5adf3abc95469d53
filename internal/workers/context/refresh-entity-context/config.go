// internal/workers/context/refresh-entity-context/config.go
package refreshentitycontext

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
