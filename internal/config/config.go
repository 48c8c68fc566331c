// Package config loads mindmapd configuration from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/mindmapd/internal/events"
	"github.com/fyrsmithlabs/mindmapd/internal/generator"
	"github.com/fyrsmithlabs/mindmapd/internal/interaction"
	"github.com/fyrsmithlabs/mindmapd/internal/layout"
	"github.com/fyrsmithlabs/mindmapd/internal/logging"
	"github.com/fyrsmithlabs/mindmapd/internal/render"
	"github.com/fyrsmithlabs/mindmapd/internal/secrets"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
	"github.com/fyrsmithlabs/mindmapd/internal/telemetry"
)

// Config is the complete mindmapd configuration.
type Config struct {
	Server      ServerConfig       `koanf:"server"`
	Logging     logging.Config     `koanf:"logging"`
	Telemetry   telemetry.Config   `koanf:"telemetry"`
	Generator   GeneratorConfig    `koanf:"generator"`
	Secrets     secrets.Config     `koanf:"secrets"`
	Storage     store.Config       `koanf:"storage"`
	Layout      layout.Config      `koanf:"layout"`
	Interaction interaction.Config `koanf:"interaction"`
	Events      events.Config      `koanf:"events"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string   `koanf:"http_host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	// SweepInterval is how often idle viewer sessions are evicted.
	SweepInterval Duration `koanf:"sweep_interval"`
	// RenderMaxPixels caps the canvas of session PNG snapshots.
	RenderMaxPixels int `koanf:"render_max_pixels"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GeneratorConfig configures the outline generator.
type GeneratorConfig struct {
	Provider       string   `koanf:"provider"`
	APIKey         Secret   `koanf:"api_key"`
	Model          string   `koanf:"model"`
	BaseURL        string   `koanf:"base_url"`
	Timeout        Duration `koanf:"timeout"`
	Temperature    float64  `koanf:"temperature"`
	MaxTokens      int      `koanf:"max_tokens"`
	RateLimit      float64  `koanf:"rate_limit"`
	Burst          int      `koanf:"burst"`
	MaxRetries     int      `koanf:"max_retries"`
	StaticResponse string   `koanf:"static_response"`
}

// ToGenerator converts to the generator package config.
func (g GeneratorConfig) ToGenerator() generator.Config {
	return generator.Config{
		Provider:       g.Provider,
		APIKey:         g.APIKey.Value(),
		Model:          g.Model,
		BaseURL:        g.BaseURL,
		Timeout:        g.Timeout.Duration(),
		Temperature:    g.Temperature,
		MaxTokens:      g.MaxTokens,
		RateLimit:      g.RateLimit,
		Burst:          g.Burst,
		MaxRetries:     g.MaxRetries,
		StaticResponse: g.StaticResponse,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	gen := generator.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: Duration(10 * time.Second),
			SweepInterval:   Duration(time.Minute),
			RenderMaxPixels: render.DefaultMaxPixels,
		},
		Logging:   *logging.NewDefaultConfig(),
		Telemetry: *telemetry.NewDefaultConfig(),
		Generator: GeneratorConfig{
			Provider:    gen.Provider,
			Model:       gen.Model,
			Timeout:     Duration(gen.Timeout),
			Temperature: gen.Temperature,
			MaxTokens:   gen.MaxTokens,
			RateLimit:   gen.RateLimit,
			Burst:       gen.Burst,
			MaxRetries:  gen.MaxRetries,
		},
		Secrets: *secrets.DefaultConfig(),
		Storage: store.Config{
			Provider: store.ProviderSQLite,
			Path:     filepath.Join("~", ".local", "share", "mindmapd", "mindmaps.db"),
		},
		Layout:      *layout.DefaultConfig(),
		Interaction: *interaction.DefaultConfig(),
		Events:      events.Config{SubjectPrefix: events.DefaultSubjectPrefix},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.http_port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Server.RenderMaxPixels <= 0 {
		return fmt.Errorf("server.render_max_pixels must be positive")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	switch c.Generator.Provider {
	case generator.ProviderOpenAI, generator.ProviderStatic:
	default:
		return fmt.Errorf("generator.provider must be %q or %q, got %q",
			generator.ProviderOpenAI, generator.ProviderStatic, c.Generator.Provider)
	}
	if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
		return fmt.Errorf("generator.temperature must be between 0 and 2, got %v", c.Generator.Temperature)
	}
	switch c.Storage.Provider {
	case store.ProviderSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	case store.ProviderMemory:
	default:
		return fmt.Errorf("storage.provider must be %q or %q, got %q",
			store.ProviderSQLite, store.ProviderMemory, c.Storage.Provider)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if c.Interaction.CaptureRadius <= 0 {
		return fmt.Errorf("interaction.capture_radius must be > 0, got %v", c.Interaction.CaptureRadius)
	}
	if c.Interaction.MaxSessions < 0 {
		return fmt.Errorf("interaction.max_sessions cannot be negative")
	}
	return nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
