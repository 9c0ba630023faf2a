package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"murmur/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Transcription.MaxCharsPerChunk != 80 {
		t.Errorf("unexpected default max chars %d", cfg.Transcription.MaxCharsPerChunk)
	}
	if cfg.Transcription.MaxChunkSeconds != 6.0 {
		t.Errorf("unexpected default max seconds %v", cfg.Transcription.MaxChunkSeconds)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
log_dir = "` + dir + `/logs"
output_dir = "` + dir + `/out"

[transcription]
max_chars_per_chunk = 42
format = "srt"
locale = "de_DE"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Transcription.MaxCharsPerChunk != 42 {
		t.Errorf("override lost, got %d", cfg.Transcription.MaxCharsPerChunk)
	}
	if cfg.Transcription.Format != "srt" {
		t.Errorf("unexpected format %q", cfg.Transcription.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Workflow.QueuePollInterval != 5 {
		t.Errorf("default poll interval lost, got %d", cfg.Workflow.QueuePollInterval)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[transcription]
max_chars_per_chunk = -1
format = "pdf"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "max_chars_per_chunk") || !strings.Contains(err.Error(), "format") {
		t.Errorf("error should name offending fields: %v", err)
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	written, err := config.WriteSample(path)
	if err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	cfg, err := config.Load(written)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if cfg.Engine.Binary != "whisper-cli" {
		t.Errorf("unexpected engine binary %q", cfg.Engine.Binary)
	}
	if _, err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestWatchValidation(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.Enabled = true
	cfg.Paths.WatchDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected watch dir requirement to fail validation")
	}
}
