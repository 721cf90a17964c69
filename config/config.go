package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppName            string `yaml:"app_name" env:"CURE_APP_NAME" validate:"required"`
	LogLevel           string `yaml:"log_level" env:"CURE_LOG_LEVEL" validate:"oneof=debug info warn error"`
	PrettyLogs         bool   `yaml:"pretty_logs" env:"CURE_PRETTY_LOGS"`
	StartupMaxAttempts int    `yaml:"startup_max_attempts" env:"CURE_STARTUP_MAX_ATTEMPTS" validate:"min=1"`

	Database DatabaseConfig `yaml:"database"`
	Matching MatchingConfig `yaml:"matching"`
	Import   ImportConfig   `yaml:"import"`
	Report   ReportConfig   `yaml:"report"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type DatabaseConfig struct {
	// MigrationFolderPath reads migrations from disk instead of the embedded set.
	MigrationFolderPath   string        `yaml:"migration_folder_path" env:"CURE_DB_MIGRATION_FOLDER_PATH"`
	MigrationVersion      int           `yaml:"migration_version" env:"CURE_DB_MIGRATION_VERSION" validate:"min=0"`
	MigrationForce        int           `yaml:"migration_force" env:"CURE_DB_MIGRATION_FORCE" validate:"min=0"`
	MigrationAutoRollback bool          `yaml:"migration_auto_rollback" env:"CURE_DB_MIGRATION_AUTO_ROLLBACK"`
	BusyTimeout           time.Duration `yaml:"busy_timeout" env:"CURE_DB_BUSY_TIMEOUT" validate:"min=0"`
}

type MatchingConfig struct {
	Strategy      string   `yaml:"strategy" env:"CURE_MATCH_STRATEGY" validate:"oneof=sql memory"`
	Rules         []string `yaml:"rules" env:"CURE_MATCH_RULES" validate:"min=1,dive,oneof=address_partial_name full_name name_zip"`
	RequireZip    bool     `yaml:"require_zip" env:"CURE_MATCH_REQUIRE_ZIP"`
	MemoCacheSize int      `yaml:"memo_cache_size" env:"CURE_MATCH_MEMO_CACHE_SIZE" validate:"min=1"`
}

type ImportConfig struct {
	// ContributionColumns maps contribution fields to header names that
	// differ from the FEC export.
	ContributionColumns map[string]string `yaml:"contribution_columns"`
	CureListSheet       string            `yaml:"cure_list_sheet" env:"CURE_IMPORT_CURE_LIST_SHEET"`
	BatchSize           int               `yaml:"batch_size" env:"CURE_IMPORT_BATCH_SIZE" validate:"min=1,max=1000"`
}

type ReportConfig struct {
	// Format overrides the output extension; empty picks from -o.
	Format string `yaml:"format" env:"CURE_REPORT_FORMAT" validate:"omitempty,oneof=text html json"`
}

type TracingConfig struct {
	Exporter string `yaml:"exporter" env:"CURE_TRACE_EXPORTER" validate:"oneof=none console otlp"`
	Endpoint string `yaml:"endpoint" env:"CURE_TRACE_ENDPOINT"`
	Protocol string `yaml:"protocol" env:"CURE_TRACE_PROTOCOL" validate:"oneof=grpc http"`
	Insecure bool   `yaml:"insecure" env:"CURE_TRACE_INSECURE"`
}

func Default() *Config {
	return &Config{
		AppName:            "cure-contributors",
		LogLevel:           "info",
		StartupMaxAttempts: 3,
		Database: DatabaseConfig{
			MigrationAutoRollback: true,
			BusyTimeout:           5 * time.Second,
		},
		Matching: MatchingConfig{
			Strategy:      "sql",
			Rules:         []string{"address_partial_name", "full_name"},
			MemoCacheSize: 100_000,
		},
		Import: ImportConfig{
			BatchSize: 500,
		},
		Tracing: TracingConfig{
			Exporter: "none",
			Protocol: "grpc",
			Insecure: true,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty), a .env file in the working directory (if present) and
// CURE_* environment variables, in that order, then validates it. Slice
// variables are comma separated without spaces.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
