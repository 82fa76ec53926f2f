// Package config loads gophrase settings from defaults, an optional YAML
// file, a .env file and GOPHRASE_* environment variables, in that order.
package config

import (
	"errors"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GOPHRASE"

// EnvConfigPath names the variable holding the YAML file path.
const EnvConfigPath = EnvPrefix + "_CONFIG"

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var (
	Backends  = []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}
	Providers = []string{"openai", "anthropic", "mock"}
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full application configuration. Environment variables are
// named after the field path, e.g. GOPHRASE_CACHE_REDIS_URL.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// ProviderConfig configures the AI provider and the wrappers around it.
type ProviderConfig struct {
	Name              string        `yaml:"name"`
	APIKey            string        `yaml:"api_key" split_words:"true"`
	Model             string        `yaml:"model"`
	MaxTokens         int           `yaml:"max_tokens" split_words:"true"`
	Temperature       float64       `yaml:"temperature"`
	BaseURL           string        `yaml:"base_url" split_words:"true"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries" split_words:"true"`
	RequestsPerMinute int           `yaml:"requests_per_minute" split_words:"true"`
}

// CacheConfig configures the phrase cache and its storage backend.
type CacheConfig struct {
	Backend      string        `yaml:"backend"`
	Path         string        `yaml:"path"`
	RedisURL     string        `yaml:"redis_url" split_words:"true"`
	KeyPrefix    string        `yaml:"key_prefix" split_words:"true"`
	Expiration   time.Duration `yaml:"expiration"`
	TrimInterval time.Duration `yaml:"trim_interval" split_words:"true"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Name:              "openai",
			MaxTokens:         256,
			Temperature:       0.3,
			Timeout:           30 * time.Second,
			MaxRetries:        2,
			RequestsPerMinute: 60,
		},
		Cache: CacheConfig{
			Backend:      BackendFile,
			Path:         "cache.json",
			KeyPrefix:    "gophrase:",
			Expiration:   7 * 24 * time.Hour,
			TrimInterval: time.Hour,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Options controls where Load looks for settings.
type Options struct {
	// Path is the YAML file. Falls back to $GOPHRASE_CONFIG; no file is
	// read when both are empty.
	Path string
	// EnvFile is the dotenv file. A missing file is ignored.
	EnvFile string
}

// Load builds the configuration. It does not validate; call Validate after
// applying any command line overrides.
func Load(opts Options) (Config, error) {
	cfg := Default()

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, zerr.With(zerr.Wrap(err, "failed to load env file"), "path", envFile)
	}

	path := opts.Path
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := readYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, zerr.Wrap(err, "failed to read environment")
	}

	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = fallbackAPIKey(cfg.Provider.Name)
	}

	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}
	return nil
}

// fallbackAPIKey reads the conventional vendor variable for the provider.
func fallbackAPIKey(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}

// Validate checks the configuration for values the application cannot run
// with. Missing credentials are reported when the provider is built.
func (c Config) Validate() error {
	var errs []error

	if !slices.Contains(Providers, strings.ToLower(c.Provider.Name)) {
		errs = append(errs, invalid("unknown provider", "provider", c.Provider.Name))
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, invalid("temperature must be between 0 and 2", "temperature", c.Provider.Temperature))
	}
	if c.Provider.MaxTokens < 0 {
		errs = append(errs, invalid("max_tokens must not be negative", "max_tokens", c.Provider.MaxTokens))
	}
	if c.Provider.MaxRetries < 0 {
		errs = append(errs, invalid("max_retries must not be negative", "max_retries", c.Provider.MaxRetries))
	}
	if c.Provider.RequestsPerMinute < 0 {
		errs = append(errs, invalid("requests_per_minute must not be negative", "requests_per_minute", c.Provider.RequestsPerMinute))
	}

	if !slices.Contains(Backends, c.Cache.Backend) {
		errs = append(errs, invalid("unknown cache backend", "backend", c.Cache.Backend))
	}
	if c.Cache.Expiration < 0 {
		errs = append(errs, invalid("expiration must not be negative", "expiration", c.Cache.Expiration.String()))
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		errs = append(errs, invalid("redis backend requires redis_url", "backend", c.Cache.Backend))
	}
	if (c.Cache.Backend == BackendFile || c.Cache.Backend == BackendSQLite) && c.Cache.Path == "" {
		errs = append(errs, invalid("cache backend requires a path", "backend", c.Cache.Backend))
	}

	return errors.Join(errs...)
}

func invalid(message, key string, value any) error {
	return zerr.With(zerr.Wrap(ErrInvalidConfig, message), key, value)
}
