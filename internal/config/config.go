// Package config loads and validates murmur's TOML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir        string `toml:"log_dir"`
	OutputDir     string `toml:"output_dir"`
	ModelCacheDir string `toml:"model_cache_dir"`
	WatchDir      string `toml:"watch_dir"`
}

// Transcription contains chunking and output defaults.
type Transcription struct {
	MaxCharsPerChunk int     `toml:"max_chars_per_chunk"`
	MaxChunkSeconds  float64 `toml:"max_chunk_seconds"`
	Format           string  `toml:"format"`
	Locale           string  `toml:"locale"`
	TimestampStyle   string  `toml:"timestamp_style"`
}

// Engine contains speech engine settings.
type Engine struct {
	Binary          string `toml:"binary"`
	FFprobeBinary   string `toml:"ffprobe_binary"`
	Model           string `toml:"model"`
	ModelBaseURL    string `toml:"model_base_url"`
	DownloadTimeout int    `toml:"download_timeout"`
	Threads         int    `toml:"threads"`
}

// Workflow contains queue driver timing.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Watch contains drop-folder settings.
type Watch struct {
	Enabled       bool     `toml:"enabled"`
	SettleSeconds int      `toml:"settle_seconds"`
	Extensions    []string `toml:"extensions"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for murmur.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Engine        Engine        `toml:"engine"`
	Workflow      Workflow      `toml:"workflow"`
	Watch         Watch         `toml:"watch"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/murmur/config.toml")
}

// Load locates, parses, and validates a configuration file. An empty path uses
// the default location; a missing file at the default location yields the
// defaults rather than an error.
func Load(path string) (*Config, error) {
	usingDefault := false
	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
		usingDefault = true
	}

	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", expanded, err)
		}
	case errors.Is(err, fs.ErrNotExist) && usingDefault:
		// Defaults only.
	default:
		return nil, fmt.Errorf("read config %s: %w", expanded, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err == nil {
		return "", fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return expanded, nil
}

// EnsureDirectories creates the directories murmur relies on at runtime.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.OutputDir, c.Paths.ModelCacheDir}
	if c.Watch.Enabled {
		dirs = append(dirs, c.Paths.WatchDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	for _, target := range []*string{
		&c.Paths.LogDir,
		&c.Paths.OutputDir,
		&c.Paths.ModelCacheDir,
		&c.Paths.WatchDir,
	} {
		if *target, err = expandPath(*target); err != nil {
			return err
		}
	}
	c.Transcription.Format = strings.ToLower(strings.TrimSpace(c.Transcription.Format))
	c.Transcription.TimestampStyle = strings.ToLower(strings.TrimSpace(c.Transcription.TimestampStyle))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	normalized := make([]string, 0, len(c.Watch.Extensions))
	for _, ext := range c.Watch.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Watch.Extensions = normalized
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Clean(trimmed), nil
}
