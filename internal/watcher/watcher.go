// Package watcher enqueues audio files dropped into the watch directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"murmur/internal/config"
	"murmur/internal/logging"
	"murmur/internal/queue"
)

// Notifier wakes the queue driver after an item is enqueued.
type Notifier interface {
	Kick()
}

// Watcher monitors the watch directory and enqueues settled audio files.
// A file is considered settled once its size stops changing, so partially
// copied files are not picked up mid-transfer.
type Watcher struct {
	cfg      *config.Config
	store    *queue.Store
	notifier Notifier
	logger   *slog.Logger
	settle   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// inflight holds paths with an active settle loop. A burst of write
	// events for one file must collapse into a single enqueue attempt.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New constructs a watcher over cfg.Paths.WatchDir.
func New(cfg *config.Config, store *queue.Store, notifier Notifier, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &Watcher{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		settle:   settle,
		inflight: make(map[string]struct{}),
	}
}

// Start begins watching. Files already present in the directory are enqueued
// on startup so a restart does not strand earlier drops.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}

	dir := strings.TrimSpace(w.cfg.Paths.WatchDir)
	if dir == "" {
		w.mu.Unlock()
		return errors.New("watch directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("ensure watch directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	go w.run(runCtx, fsw, dir)
	return nil
}

// Stop terminates watching and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, dir string) {
	defer w.wg.Done()
	defer fsw.Close()

	w.enqueueExisting(ctx, dir)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.eligible(event.Name) {
				continue
			}
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				w.settleAndEnqueue(ctx, path)
			}(event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) enqueueExisting(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("scan watch directory failed", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !w.eligible(path) {
			continue
		}
		w.enqueue(ctx, path)
	}
}

// settleAndEnqueue waits until the file size is stable across one settle
// interval before enqueueing. Only one settle loop runs per path at a time.
func (w *Watcher) settleAndEnqueue(ctx context.Context, path string) {
	if !w.beginSettle(path) {
		return
	}
	defer w.endSettle(path)

	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.settle):
		}

		info, err := os.Stat(path)
		if err != nil {
			// Removed or renamed away before it settled.
			return
		}
		if info.IsDir() {
			return
		}
		if info.Size() == lastSize {
			break
		}
		lastSize = info.Size()
	}
	w.enqueue(ctx, path)
}

func (w *Watcher) beginSettle(path string) bool {
	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()
	if _, active := w.inflight[path]; active {
		return false
	}
	w.inflight[path] = struct{}{}
	return true
}

func (w *Watcher) endSettle(path string) {
	w.inflightMu.Lock()
	delete(w.inflight, path)
	w.inflightMu.Unlock()
}

func (w *Watcher) enqueue(ctx context.Context, path string) {
	existing, err := w.store.FindBySourcePath(ctx, path)
	if err != nil {
		w.logger.Error("queue lookup failed", logging.Error(err), logging.String("source", path))
		return
	}
	if existing != nil {
		w.logger.Debug("already queued, skipping", logging.String("source", path))
		return
	}

	item, err := w.store.NewItem(ctx, path, "", w.cfg.Transcription.Format, w.cfg.Transcription.Locale)
	if err != nil {
		w.logger.Error("enqueue failed", logging.Error(err), logging.String("source", path))
		return
	}
	w.logger.Info("enqueued dropped file",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", path),
	)
	if w.notifier != nil {
		w.notifier.Kick()
	}
}

func (w *Watcher) eligible(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	for _, allowed := range w.cfg.Watch.Extensions {
		if strings.EqualFold(strings.TrimPrefix(allowed, "."), ext) {
			return true
		}
	}
	return false
}
