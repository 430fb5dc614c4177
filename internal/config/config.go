package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Perception providers.
const (
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

// Config is the contents of config.yaml after environment overrides.
type Config struct {
	Perception PerceptionConfig `yaml:"perception"`
	Planner    PlannerConfig    `yaml:"planner"`
}

// PerceptionConfig configures the scene and instruction parsers.
type PerceptionConfig struct {
	// Provider is "gemini" or "offline" (rule-based instruction parsing,
	// scenes only from files)
	Provider string `yaml:"provider"`

	// Model is the multimodal model name
	Model string `yaml:"model"`

	// APIKey is normally left empty and read from GEMINI_API_KEY
	APIKey string `yaml:"api_key,omitempty"`

	// Timeout bounds a single model request
	Timeout time.Duration `yaml:"timeout"`

	// CacheSize is the number of parsed scenes kept in memory per process
	CacheSize int `yaml:"cache_size"`
}

// PlannerConfig configures planning defaults.
type PlannerConfig struct {
	// RotateAngle is used when a rotate instruction gives no angle
	RotateAngle float64 `yaml:"rotate_angle"`
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() *Config {
	return &Config{
		Perception: PerceptionConfig{
			Provider:  ProviderGemini,
			Model:     "gemini-2.5-flash",
			Timeout:   2 * time.Minute,
			CacheSize: 64,
		},
		Planner: PlannerConfig{
			RotateAngle: 90,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Perception.Provider {
	case ProviderGemini:
		if c.Perception.Model == "" {
			return fmt.Errorf("perception.model is required for provider %q", ProviderGemini)
		}
	case ProviderOffline:
	default:
		return fmt.Errorf("perception.provider must be %q or %q, got %q", ProviderGemini, ProviderOffline, c.Perception.Provider)
	}
	if c.Perception.Timeout < 0 {
		return fmt.Errorf("perception.timeout must not be negative")
	}
	if c.Perception.CacheSize < 0 {
		return fmt.Errorf("perception.cache_size must not be negative")
	}
	return nil
}

// Load reads .env (if any), the config file at path (if it exists) and
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ROBOPLAN_PERCEPTION")); v != "" {
		c.Perception.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ROBOPLAN_MODEL")); v != "" {
		c.Perception.Model = v
	}
	if c.Perception.APIKey == "" {
		c.Perception.APIKey = firstNonEmpty(
			strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		)
	}
}

// SaveToFile writes the config as YAML. The API key is never written.
func (c *Config) SaveToFile(path string, write func(path string, data []byte, perm os.FileMode) error) error {
	out := *c
	out.Perception.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := write(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
