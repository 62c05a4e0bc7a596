package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDatasetPath = "sleep_data.csv"
	DefaultAddr        = ":8501"
	DefaultTestSize    = 0.2
	DefaultSeed        = 42
	DefaultBackend     = "golearn"
)

type Config struct {
	DatasetPath string `yaml:"dataset_path"`
	Addr        string `yaml:"addr"`

	Model ModelConfig `yaml:"model"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type ModelConfig struct {
	// Backend selects the classifier: golearn (served by default) or native.
	Backend         string  `yaml:"backend"`
	TestSize        float64 `yaml:"test_size"`
	Seed            int64   `yaml:"seed"`
	MaxDepth        int     `yaml:"max_depth"`
	MinSamplesSplit int     `yaml:"min_samples_split"`
	MinSamplesLeaf  int     `yaml:"min_samples_leaf"`
}

func Default() Config {
	return Config{
		DatasetPath: DefaultDatasetPath,
		Addr:        DefaultAddr,
		Model: ModelConfig{
			Backend:         DefaultBackend,
			TestSize:        DefaultTestSize,
			Seed:            DefaultSeed,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. A .env file in the working directory is loaded
// first if present. An empty path falls back to SLEEPQ_CONFIG.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("SLEEPQ_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.DatasetPath = getEnv("SLEEPQ_DATASET", cfg.DatasetPath)
	cfg.Addr = getEnv("SLEEPQ_ADDR", cfg.Addr)
	cfg.LogLevel = getEnv("SLEEPQ_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("SLEEPQ_LOG_FORMAT", cfg.LogFormat)
	cfg.Model.Backend = getEnv("SLEEPQ_MODEL_BACKEND", cfg.Model.Backend)
	cfg.Model.TestSize = getEnvFloat("SLEEPQ_TEST_SIZE", cfg.Model.TestSize)
	cfg.Model.Seed = int64(getEnvInt("SLEEPQ_SEED", int(cfg.Model.Seed)))
	cfg.Model.MaxDepth = getEnvInt("SLEEPQ_MAX_DEPTH", cfg.Model.MaxDepth)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatasetPath) == "" {
		errs = append(errs, errors.New("dataset_path is required"))
	}
	if c.Model.TestSize <= 0 || c.Model.TestSize >= 1 {
		errs = append(errs, fmt.Errorf("model.test_size must be in (0, 1), got %v", c.Model.TestSize))
	}
	switch c.Model.Backend {
	case "golearn", "native":
	default:
		errs = append(errs, fmt.Errorf("model.backend must be golearn or native, got %q", c.Model.Backend))
	}
	if c.Model.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("model.max_depth must be >= 0, got %d", c.Model.MaxDepth))
	}
	if c.Model.MinSamplesSplit < 2 {
		errs = append(errs, fmt.Errorf("model.min_samples_split must be >= 2, got %d", c.Model.MinSamplesSplit))
	}
	if c.Model.MinSamplesLeaf < 1 {
		errs = append(errs, fmt.Errorf("model.min_samples_leaf must be >= 1, got %d", c.Model.MinSamplesLeaf))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel onto slog levels; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("failed to parse env var as float, using default", "key", key, "error", err)
		return defaultValue
	}
	return floatValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("failed to parse env var as int, using default", "key", key, "error", err)
		return defaultValue
	}
	return intValue
}
