package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"murmur/internal/fileutil"
	"murmur/internal/services"
)

const defaultModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ModelPath returns the expected location of the configured ggml model file.
func (w *Whisper) ModelPath() string {
	return filepath.Join(w.cfg.ModelCacheDir, fmt.Sprintf("ggml-%s.bin", w.cfg.Model))
}

// ModelInstalled reports whether the model file is present in the cache.
func (w *Whisper) ModelInstalled() bool {
	return fileutil.FileExists(w.ModelPath())
}

// EnsureModel downloads the configured model into the cache when missing.
// The download lands in a temporary sibling first so an interrupted transfer
// never leaves a truncated model behind.
func (w *Whisper) EnsureModel(ctx context.Context) error {
	if w.ModelInstalled() {
		return nil
	}

	if err := os.MkdirAll(w.cfg.ModelCacheDir, 0o755); err != nil {
		return services.Wrap(services.ErrModelProvisioning, "engine", "model cache", w.cfg.ModelCacheDir, err)
	}

	baseURL := w.cfg.ModelBaseURL
	if baseURL == "" {
		baseURL = defaultModelBaseURL
	}
	url := fmt.Sprintf("%s/ggml-%s.bin", baseURL, w.cfg.Model)

	timeout := time.Duration(w.cfg.DownloadTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.Wrap(services.ErrModelProvisioning, "engine", "model request", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrModelProvisioning, "engine", "model download", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrModelProvisioning, "engine", "model download",
			fmt.Sprintf("%s: unexpected status %s", url, resp.Status), nil)
	}

	target := w.ModelPath()
	tmp, err := os.CreateTemp(w.cfg.ModelCacheDir, ".ggml-*.partial")
	if err != nil {
		return services.Wrap(services.ErrModelProvisioning, "engine", "model temp file", w.cfg.ModelCacheDir, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return services.Wrap(services.ErrModelProvisioning, "engine", "model write", target, err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrModelProvisioning, "engine", "model close", target, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return services.Wrap(services.ErrModelProvisioning, "engine", "model install", target, err)
	}
	return nil
}
