package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/mindmapd/internal/layout"
	"github.com/fyrsmithlabs/mindmapd/internal/logging"
	"github.com/fyrsmithlabs/mindmapd/internal/secrets"
	"github.com/fyrsmithlabs/mindmapd/internal/store"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "MINDMAPD_"
)

// DefaultPath returns ~/.config/mindmapd/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mindmapd", "config.yaml"), nil
}

// Load reads configuration from the YAML file at configPath (or DefaultPath
// when empty), then applies environment overrides.
//
// Precedence, highest first:
//  1. Environment variables (MINDMAPD_SERVER_HTTP_PORT, MINDMAPD_GENERATOR_MODEL, ...)
//  2. YAML config file
//  3. Built-in defaults
//
// A missing file is not an error. An existing file must live under
// ~/.config/mindmapd/ or /etc/mindmapd/, have 0600 or 0400 permissions and be
// at most 1MB.
//
// Environment variables drop the prefix and split on the first underscore:
//
//	MINDMAPD_SERVER_HTTP_PORT        -> server.http_port
//	MINDMAPD_INTERACTION_SESSION_TTL -> interaction.session_ttl
//
// OPENAI_API_KEY is used for generator.api_key when nothing else sets it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		// Validate through the open descriptor to avoid a TOCTOU race.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	// Slices are decoded element-wise onto existing values, so list defaults
	// are filled in after unmarshaling instead.
	cfg.Layout.Palette = nil
	cfg.Secrets.Rules = nil
	cfg.Logging.Redaction.Fields = nil
	cfg.Logging.Redaction.Patterns = nil

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps MINDMAPD_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// EnsureConfigDir creates ~/.config/mindmapd with 0700 permissions.
func EnsureConfigDir() error {
	p, err := DefaultPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}

// validateConfigPath checks the path resolves inside an allowed directory.
// It runs whether or not the file exists.
func validateConfigPath(path string) error {
	expanded, err := expandHome(path)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	// Follow symlinks so they cannot escape the allowed directories. Paths
	// that do not exist yet are checked as given.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolved = absPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	allowedDirs := []string{
		filepath.Join(home, ".config", "mindmapd"),
		"/etc/mindmapd",
	}
	for _, dir := range allowedDirs {
		if resolved == dir || strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("config file must be in ~/.config/mindmapd/ or /etc/mindmapd/")
}

// validateConfigFileProperties checks permissions and size of an opened file.
func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}

// applyDefaults fills values that unmarshaling may have left empty.
func applyDefaults(cfg *Config) error {
	if len(cfg.Layout.Palette) == 0 {
		cfg.Layout.Palette = layout.DefaultConfig().Palette
	}
	if len(cfg.Secrets.Rules) == 0 {
		cfg.Secrets.Rules = secrets.DefaultRules()
	}
	if cfg.Secrets.Redaction == "" {
		cfg.Secrets.Redaction = secrets.DefaultRedaction
	}
	if cfg.Logging.Redaction.Fields == nil {
		cfg.Logging.Redaction.Fields = logging.DefaultRedactedFields()
	}
	if cfg.Logging.Redaction.Patterns == nil {
		cfg.Logging.Redaction.Patterns = logging.DefaultRedactionPatterns()
	}

	if !cfg.Generator.APIKey.IsSet() {
		cfg.Generator.APIKey = Secret(os.Getenv("OPENAI_API_KEY"))
	}

	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = store.ProviderSQLite
	}
	path, err := expandHome(cfg.Storage.Path)
	if err != nil {
		return err
	}
	cfg.Storage.Path = path
	return nil
}
