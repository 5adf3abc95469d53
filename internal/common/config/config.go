// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Scoring   ScoringConfig           `mapstructure:"scoring"`
	Quality   QualityConfig           `mapstructure:"quality"`
	Batch     BatchConfig             `mapstructure:"batch"`
	Schedules ScheduleConfig          `mapstructure:"schedules"`
	Logging   LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	ContextIndex string   `mapstructure:"context_index"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Engine Tunables ---

// ScoringConfig carries the factor weight vector. Weights are
// configuration, not business logic, so operators can retune without
// touching the algorithm.
type ScoringConfig struct {
	Weights map[string]float64 `mapstructure:"weights"`
}

// QualityConfig carries the ordered score-to-tier cut points.
type QualityConfig struct {
	Bands []QualityBand `mapstructure:"bands"`
}

type QualityBand struct {
	MinScore int    `mapstructure:"min_score"`
	Level    string `mapstructure:"level"`
	Tier     int    `mapstructure:"tier"`
}

// BatchConfig controls the batch driver's worker pool.
type BatchConfig struct {
	Concurrency    int `mapstructure:"concurrency"`
	MaxRetries     int `mapstructure:"max_retries"`
	UnitTimeout    int `mapstructure:"unit_timeout"`     // milliseconds
	RetryBaseDelay int `mapstructure:"retry_base_delay"` // milliseconds
	CacheTTL       int `mapstructure:"cache_ttl"`        // seconds
}

// ScheduleConfig carries the cron expressions for context refresh.
type ScheduleConfig struct {
	CityRefresh string `mapstructure:"city_refresh"`
	JobRefresh  string `mapstructure:"job_refresh"`
	UserRefresh string `mapstructure:"user_refresh"`
	FullRefresh string `mapstructure:"full_refresh"`
	ModelVer    string `mapstructure:"model_version"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
