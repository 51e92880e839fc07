// Package config loads notehub settings from ~/.notehub/config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "NOTEHUB_"

	// DefaultBaseURL is the public NoteHub service.
	DefaultBaseURL = "https://notehub-public.goit.study/api"
)

// Config represents the notehub configuration.
type Config struct {
	API   APIConfig   `koanf:"api"`
	Cache CacheConfig `koanf:"cache"`
	UI    UIConfig    `koanf:"ui"`
	Draft DraftConfig `koanf:"draft"`
	Log   LogConfig   `koanf:"log"`
}

// APIConfig configures the remote note service client.
type APIConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Token     string        `koanf:"token"`
	Timeout   time.Duration `koanf:"timeout"`    // 0 means no transport timeout
	RateLimit float64       `koanf:"rate_limit"` // requests per second, 0 disables
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	StaleTime time.Duration `koanf:"stale_time"`
	Size      int           `koanf:"size"`
	Retries   int           `koanf:"retries"`
}

// UIConfig configures the list view.
type UIConfig struct {
	PageSize int           `koanf:"page_size"`
	Debounce time.Duration `koanf:"debounce"`
}

// DraftConfig locates the draft store.
type DraftConfig struct {
	Path string `koanf:"path"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
	Format string `koanf:"format"` // json or console
}

// Dir returns ~/.notehub.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".notehub"), nil
}

// DefaultPath returns the config file location, honouring NOTEHUB_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "CONFIG"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = ".notehub"
	}
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultBaseURL,
			RateLimit: 10,
		},
		Cache: CacheConfig{
			StaleTime: time.Minute,
			Size:      128,
			Retries:   3,
		},
		UI: UIConfig{
			PageSize: 9,
			Debounce: time.Second,
		},
		Draft: DraftConfig{
			Path: filepath.Join(dir, "notehub.db"),
		},
		Log: LogConfig{
			Level:  "info",
			File:   filepath.Join(dir, "notehub.log"),
			Format: "json",
		},
	}
}

// Load reads configuration with precedence environment > YAML file > defaults.
// A .env file in the working directory is loaded into the environment first
// without overriding variables that are already set. A missing config file
// is not an error. An empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	k := koanf.New(".")

	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if os.Getenv(EnvPrefix+"API_TOKEN") == "" {
		if token := os.Getenv(EnvPrefix + "TOKEN"); token != "" {
			if err := k.Set("api.token", token); err != nil {
				return nil, fmt.Errorf("failed to apply %sTOKEN: %w", EnvPrefix, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Draft.Path = expandHome(cfg.Draft.Path)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// readConfigFile returns nil content when the file does not exist.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if len(content) > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large (max %d bytes)", maxConfigFileSize)
	}
	return content, nil
}

// envValue skips variables that are set but empty so a blank
// NOTEHUB_API_TOKEN= does not clear the file value.
func envValue(key, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	return envKey(key), value
}

// envKey maps NOTEHUB_API_BASE_URL to api.base_url. The section is split on
// the first underscore only. Keys handled elsewhere map to "" and are skipped.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative: %s", c.API.Timeout)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative: %g", c.API.RateLimit)
	}
	if c.Cache.StaleTime < 0 {
		return fmt.Errorf("cache.stale_time must not be negative: %s", c.Cache.StaleTime)
	}
	if c.Cache.Size < 1 {
		return fmt.Errorf("cache.size must be at least 1: %d", c.Cache.Size)
	}
	if c.UI.PageSize < 1 {
		return fmt.Errorf("ui.page_size must be at least 1: %d", c.UI.PageSize)
	}
	if c.UI.Debounce < 0 {
		return fmt.Errorf("ui.debounce must not be negative: %s", c.UI.Debounce)
	}
	if !logLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("unknown log.level %q", c.Log.Level)
	}
	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// Save writes cfg as YAML to path, creating the parent directory.
// The file holds the bearer token, so it is written owner-only.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yamlv3.Marshal(fileFormat(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// fileFormat renders durations as strings so the file stays hand-editable.
func fileFormat(c *Config) map[string]any {
	return map[string]any{
		"api": map[string]any{
			"base_url":   c.API.BaseURL,
			"token":      c.API.Token,
			"timeout":    c.API.Timeout.String(),
			"rate_limit": c.API.RateLimit,
		},
		"cache": map[string]any{
			"stale_time": c.Cache.StaleTime.String(),
			"size":       c.Cache.Size,
			"retries":    c.Cache.Retries,
		},
		"ui": map[string]any{
			"page_size": c.UI.PageSize,
			"debounce":  c.UI.Debounce.String(),
		},
		"draft": map[string]any{
			"path": c.Draft.Path,
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"file":   c.Log.File,
			"format": c.Log.Format,
		},
	}
}
