package config

import (
	"os"
	"time"

	"edascope/internal/errors"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every structured environment variable (EDA_SERVER_PORT, ...)
const EnvPrefix = "EDA"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
	Engine   EngineConfig   `yaml:"engine" envconfig:"ENGINE"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `yaml:"port" envconfig:"PORT"`
	GinMode         string        `yaml:"gin_mode" envconfig:"GIN_MODE"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
}

// EngineConfig holds analysis parameters
type EngineConfig struct {
	HistogramBins       int     `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS"`
	TopKDefault         int     `yaml:"topk_default" envconfig:"TOPK_DEFAULT"`
	TopKMin             int     `yaml:"topk_min" envconfig:"TOPK_MIN"`
	TopKMax             int     `yaml:"topk_max" envconfig:"TOPK_MAX"`
	RedundancyThreshold float64 `yaml:"redundancy_threshold" envconfig:"REDUNDANCY_THRESHOLD"`
}

// DataConfig holds data loading settings
type DataConfig struct {
	File            string  `yaml:"file" envconfig:"FILE"`
	Sheet           string  `yaml:"sheet" envconfig:"SHEET"`
	MaxRows         int     `yaml:"max_rows" envconfig:"MAX_ROWS"` // 0 = unlimited
	ParseTimestamps bool    `yaml:"parse_timestamps" envconfig:"PARSE_TIMESTAMPS"`
	NumericRatio    float64 `yaml:"numeric_ratio" envconfig:"NUMERIC_RATIO"`
}

// DatabaseConfig holds the optional dataset catalog connection
type DatabaseConfig struct {
	URL          string `yaml:"url" envconfig:"URL"`
	MaxOpenConns int    `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			GinMode:         "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  64 << 20,
		},
		Log: LogConfig{Level: "INFO"},
		Engine: EngineConfig{
			HistogramBins:       50,
			TopKDefault:         10,
			TopKMin:             5,
			TopKMax:             20,
			RedundancyThreshold: 0.8,
		},
		Data: DataConfig{
			NumericRatio: 0.8,
		},
		Database: DatabaseConfig{MaxOpenConns: 5},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// EDA_CONFIG_FILE (if any), then EDA_* environment variables. The plain
// PORT, GIN_MODE, LOG_LEVEL, DATABASE_URL and EXCEL_FILE variables are
// honoured when their prefixed form is unset.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	cfg.applyLegacyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// LoadFile builds the configuration from defaults plus a YAML file only
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the keys present in a YAML file
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

func (c *Config) applyLegacyEnv() {
	prefixed := func(section, key string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + section + "_" + key)
		return ok
	}
	if !prefixed("SERVER", "PORT") {
		c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	}
	if !prefixed("SERVER", "GIN_MODE") {
		c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
	}
	if !prefixed("LOG", "LEVEL") {
		c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	}
	if !prefixed("DATABASE", "URL") {
		c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	}
	if !prefixed("DATA", "FILE") {
		c.Data.File = getEnvOrDefault("EXCEL_FILE", c.Data.File)
	}
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	e := c.Engine
	if e.HistogramBins < 1 {
		return errors.ConfigInvalid("histogram bins must be positive")
	}
	if e.TopKMin < 1 || e.TopKMin > e.TopKMax {
		return errors.ConfigInvalid("top-k bounds must satisfy 1 <= min <= max")
	}
	if e.TopKDefault < e.TopKMin || e.TopKDefault > e.TopKMax {
		return errors.ConfigInvalid("top-k default must lie within [min, max]")
	}
	if e.RedundancyThreshold <= 0 || e.RedundancyThreshold >= 1 {
		return errors.ConfigInvalid("redundancy threshold must lie in (0, 1)")
	}
	if c.Data.NumericRatio <= 0 || c.Data.NumericRatio > 1 {
		return errors.ConfigInvalid("numeric ratio must lie in (0, 1]")
	}
	if c.Data.MaxRows < 0 {
		return errors.ConfigInvalid("max rows cannot be negative")
	}
	return nil
}

// ClampK bounds a requested top-k to [TopKMin, TopKMax]; 0 selects the default
func (e EngineConfig) ClampK(k int) int {
	switch {
	case k == 0:
		return e.TopKDefault
	case k < e.TopKMin:
		return e.TopKMin
	case k > e.TopKMax:
		return e.TopKMax
	}
	return k
}

// HasDatabase reports whether the dataset catalog is configured
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
