package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrPlaceholder marks a required value that was left at an obvious template default.
var ErrPlaceholder = errors.New("config: placeholder value")

const (
	TransportGenAI      = "genai"
	TransportAIPlatform = "aiplatform"

	defaultPort         = "8080"
	defaultModel        = "gemini-2.5-flash"
	defaultTemperature  = 0.2
	defaultMaxBodyBytes = 15 << 20
	defaultWriteTimeout = 90 * time.Second
)

// Config holds runtime configuration values.
type Config struct {
	Port               string        `yaml:"port"`
	StaticDir          string        `yaml:"static_dir"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	Model              ModelConfig   `yaml:"model"`
	Log                LogConfig     `yaml:"log"`
}

// ModelConfig describes the hosted model endpoint used for identification. Temperature is nil
// until set, so an explicit 0 survives defaulting.
type ModelConfig struct {
	Project         string   `yaml:"project"`
	Region          string   `yaml:"region"`
	Name            string   `yaml:"name"`
	Transport       string   `yaml:"transport"`
	CredentialsFile string   `yaml:"credentials_file"`
	Temperature     *float64 `yaml:"temperature"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the optional YAML file at path, applies environment overrides and fills defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getenv("APP_PORT", cfg.Port)
	cfg.StaticDir = getenv("STATIC_DIR", cfg.StaticDir)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}
	cfg.MaxBodyBytes = getenvInt64("MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.WriteTimeout = getenvDuration("HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)

	cfg.Model.Project = getenv("GCP_PROJECT_ID", cfg.Model.Project)
	cfg.Model.Region = getenv("GCP_LOCATION", cfg.Model.Region)
	cfg.Model.Name = getenv("GEMINI_MODEL", cfg.Model.Name)
	cfg.Model.Transport = getenv("MODEL_TRANSPORT", cfg.Model.Transport)
	cfg.Model.CredentialsFile = getenv("GOOGLE_SERVICE_ACCOUNT_FILE", cfg.Model.CredentialsFile)
	cfg.Model.Temperature = getenvFloatPtr("MODEL_TEMPERATURE", cfg.Model.Temperature)

	cfg.Log.Level = getenv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("LOG_FORMAT", cfg.Log.Format)
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = defaultPort
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	cfg.Model.Project = strings.TrimSpace(cfg.Model.Project)
	cfg.Model.Region = strings.TrimSpace(cfg.Model.Region)
	cfg.Model.Name = strings.TrimPrefix(strings.TrimSpace(cfg.Model.Name), "models/")
	if cfg.Model.Name == "" {
		cfg.Model.Name = defaultModel
	}
	cfg.Model.Transport = strings.ToLower(strings.TrimSpace(cfg.Model.Transport))
	if cfg.Model.Transport == "" {
		cfg.Model.Transport = TransportGenAI
	}
	if cfg.Model.Temperature == nil {
		temperature := defaultTemperature
		cfg.Model.Temperature = &temperature
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if err := checkRequired("GCP_PROJECT_ID", c.Model.Project); err != nil {
		return err
	}
	if err := checkRequired("GCP_LOCATION", c.Model.Region); err != nil {
		return err
	}
	switch c.Model.Transport {
	case TransportGenAI, TransportAIPlatform:
	default:
		return fmt.Errorf("config: unknown MODEL_TRANSPORT %q (want %s or %s)", c.Model.Transport, TransportGenAI, TransportAIPlatform)
	}
	if t := c.Model.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("config: MODEL_TEMPERATURE %v out of range [0, 2]", *t)
	}
	return nil
}

func checkRequired(key, value string) error {
	if value == "" {
		return fmt.Errorf("config: %s is required", key)
	}
	if IsPlaceholder(value) {
		return fmt.Errorf("%w: %s=%q", ErrPlaceholder, key, value)
	}
	return nil
}

var placeholderValues = []string{
	"changeme", "change-me", "change_me", "placeholder", "todo", "tbd", "xxx",
	"project", "project-id", "project_id", "region", "location",
}

// IsPlaceholder reports whether value looks like an unfilled template value.
func IsPlaceholder(value string) bool {
	clean := strings.ToLower(strings.TrimSpace(value))
	if clean == "" {
		return false
	}
	if slices.Contains(placeholderValues, clean) {
		return true
	}
	if strings.HasPrefix(clean, "<") && strings.HasSuffix(clean, ">") {
		return true
	}
	if strings.HasPrefix(clean, "${") || strings.HasPrefix(clean, "{{") {
		return true
	}
	return strings.HasPrefix(clean, "your-") || strings.HasPrefix(clean, "your_") || strings.Contains(clean, "replace-me")
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}

	return parsed
}

func getenvFloatPtr(key string, fallback *float64) *float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}

	return &parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}

	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
