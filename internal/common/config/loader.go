// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overrides, e.g. config.production.yaml
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one, so the
// loader works from the repo root, cmd/ directories and test dirs.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// DefaultWeights is the fallback factor weight vector. The exact
// production values are operator-tuned; these are testable defaults.
var DefaultWeights = map[string]float64{
	"skill_overlap":    0.35,
	"compensation_fit": 0.25,
	"remote_fit":       0.15,
	"visa_fit":         0.10,
	"timezone_fit":     0.15,
}

// DefaultQualityBands is the fallback score-to-tier table, ordered by
// descending cut point.
var DefaultQualityBands = []QualityBand{
	{MinScore: 85, Level: "excellent", Tier: 5},
	{MinScore: 70, Level: "good", Tier: 4},
	{MinScore: 50, Level: "fair", Tier: 3},
	{MinScore: 30, Level: "weak", Tier: 2},
	{MinScore: 0, Level: "poor", Tier: 1},
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "nomad-workers"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = "localhost:26500"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 20
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 {
		cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.Database.Elasticsearch.ContextIndex == "" {
		cfg.Database.Elasticsearch.ContextIndex = "ai-contexts"
	}

	if len(cfg.Scoring.Weights) == 0 {
		cfg.Scoring.Weights = DefaultWeights
	}
	if len(cfg.Quality.Bands) == 0 {
		cfg.Quality.Bands = DefaultQualityBands
	}

	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = 4
	}
	if cfg.Batch.MaxRetries == 0 {
		cfg.Batch.MaxRetries = 3
	}
	if cfg.Batch.UnitTimeout == 0 {
		cfg.Batch.UnitTimeout = 300000 // 5 minutes per unit
	}
	if cfg.Batch.RetryBaseDelay == 0 {
		cfg.Batch.RetryBaseDelay = 1000
	}
	if cfg.Batch.CacheTTL == 0 {
		cfg.Batch.CacheTTL = 600
	}

	if cfg.Schedules.CityRefresh == "" {
		cfg.Schedules.CityRefresh = "0 2 * * *"
	}
	if cfg.Schedules.JobRefresh == "" {
		cfg.Schedules.JobRefresh = "0 3 * * *"
	}
	if cfg.Schedules.UserRefresh == "" {
		cfg.Schedules.UserRefresh = "0 4 * * *"
	}
	if cfg.Schedules.FullRefresh == "" {
		cfg.Schedules.FullRefresh = "0 5 * * 0"
	}
	if cfg.Schedules.ModelVer == "" {
		cfg.Schedules.ModelVer = "rules-v1"
	}
}

func validateConfig(cfg *Config) error {
	var total float64
	for name, w := range cfg.Scoring.Weights {
		if w < 0 {
			return fmt.Errorf("scoring weight %q is negative", name)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("scoring weights sum to zero")
	}

	prev := 101
	for i, band := range cfg.Quality.Bands {
		if band.MinScore < 0 || band.MinScore > 100 {
			return fmt.Errorf("quality band %d min_score out of range: %d", i, band.MinScore)
		}
		if band.MinScore >= prev {
			return fmt.Errorf("quality bands must be ordered by descending min_score")
		}
		if band.Level == "" {
			return fmt.Errorf("quality band %d has no level", i)
		}
		prev = band.MinScore
	}
	if len(cfg.Quality.Bands) > 0 && cfg.Quality.Bands[len(cfg.Quality.Bands)-1].MinScore != 0 {
		return fmt.Errorf("last quality band must start at 0 so every score maps to a tier")
	}

	return nil
}
