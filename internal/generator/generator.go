// Package generator turns free text into an outline by asking a language
// model for a JSON mind map.
//
// The model is an external collaborator: its output is untrusted and every
// response goes through outline.Parse before it reaches the caller.
package generator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mindmapd/internal/outline"
	"github.com/fyrsmithlabs/mindmapd/internal/secrets"
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

const (
	defaultModel       = "gpt-4"
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
	defaultRateLimit   = 1.0
	defaultBurst       = 2
	defaultMaxRetries  = 2
	defaultBaseBackoff = time.Second
)

// Request is one generation job.
type Request struct {
	Title    string
	Content  string
	MaxDepth int
}

// Generator produces an outline for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*outline.Structure, error)
}

// Config selects and tunes a generator.
type Config struct {
	Provider    string
	APIKey      string `json:"-"`
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	RateLimit   float64
	Burst       int
	MaxRetries  int

	// StaticResponse is returned verbatim by the static provider.
	StaticResponse string
}

// DefaultConfig returns the OpenAI settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       defaultModel,
		Timeout:     defaultTimeout,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		RateLimit:   defaultRateLimit,
		Burst:       defaultBurst,
		MaxRetries:  defaultMaxRetries,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Temperature <= 0 {
		c.Temperature = d.Temperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.RateLimit <= 0 {
		c.RateLimit = d.RateLimit
	}
	if c.Burst <= 0 {
		c.Burst = d.Burst
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
}

// New builds the generator named by cfg.Provider.
func New(cfg Config, scrubber *secrets.Scrubber, logger *zap.Logger) (Generator, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAI(cfg, scrubber, logger)
	case ProviderStatic:
		return NewStatic(cfg.StaticResponse), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s (supported: %s, %s)",
			cfg.Provider, ProviderOpenAI, ProviderStatic)
	}
}
