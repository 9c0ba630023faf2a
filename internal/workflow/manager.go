package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"murmur/internal/config"
	"murmur/internal/logging"
	"murmur/internal/queue"
	"murmur/internal/services"
)

// Handler is the per-item processing contract the manager drives. Prepare
// validates and enriches the item; Execute performs the work.
type Handler interface {
	Prepare(ctx context.Context, item *queue.Item) error
	Execute(ctx context.Context, item *queue.Item) error
}

type loggerAware interface {
	SetLogger(logger *slog.Logger)
}

type progressAware interface {
	SetProgressFunc(fn func(ratio float64))
}

// Manager claims pending queue items and processes them sequentially.
type Manager struct {
	cfg           *config.Config
	store         *queue.Store
	handler       Handler
	logger        *slog.Logger
	pollInterval  time.Duration
	retryInterval time.Duration
	kick          chan struct{}

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager around the given stage handler.
func NewManager(cfg *config.Config, store *queue.Store, handler Handler, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:           cfg,
		store:         store,
		handler:       handler,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		kick:          make(chan struct{}, 1),
	}
}

// Start begins background processing. Items left in the transcribing state by
// a previous run are reset to pending before the loop starts.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.handler == nil {
		m.mu.Unlock()
		return errors.New("workflow handler not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	reset, err := m.store.ResetStuckTranscribing(runCtx)
	if err != nil {
		m.logger.Warn("reset of interrupted items failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_reset_failed"),
		)
	} else if reset > 0 {
		m.logger.Info("reset interrupted items to pending",
			logging.Int64("count", reset),
		)
	}

	go m.runLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for the loop to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the processing loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Kick wakes the processing loop without waiting for the next poll tick.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastItem returns a copy of the most recently finished item, if any.
func (m *Manager) LastItem() *queue.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastItem == nil {
		return nil
	}
	copied := *m.lastItem
	return &copied
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextPending(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue item",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
			)
			m.waitOrShutdown(ctx, m.retryInterval)
			continue
		}
		if item == nil {
			m.waitOrShutdown(ctx, m.pollInterval)
			continue
		}

		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if services.IsFatal(err) {
				m.logger.Error("engine unavailable, stopping queue processing",
					logging.Error(err),
					logging.String(logging.FieldEventType, "engine_unavailable"),
				)
				return
			}
		}
	}
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	requestID := uuid.NewString()
	itemLogger := m.logger.With(
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldRequestID, requestID),
	)
	if aware, ok := m.handler.(loggerAware); ok {
		aware.SetLogger(itemLogger)
	}
	if aware, ok := m.handler.(progressAware); ok {
		aware.SetProgressFunc(m.persistProgress(ctx, item))
	}

	item.Status = queue.StatusTranscribing
	item.ErrorMessage = ""
	item.SetProgress("Starting", 0)
	if err := m.store.Update(ctx, item); err != nil {
		m.setLastError(err)
		itemLogger.Error("failed to claim queue item", logging.Error(err))
		return err
	}

	started := time.Now()
	itemLogger.Info("transcription started",
		logging.String(logging.FieldEventType, "item_start"),
		logging.String("source", item.SourcePath),
	)

	err := m.handler.Prepare(ctx, item)
	if err == nil {
		if persistErr := m.store.Update(ctx, item); persistErr != nil {
			err = fmt.Errorf("persist preparation: %w", persistErr)
		}
	}
	if err == nil {
		err = m.handler.Execute(ctx, item)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			itemLogger.Debug("item interrupted by shutdown")
			return err
		}
		m.failItem(ctx, itemLogger, item, err)
		m.setLastError(err)
		return err
	}

	item.SetCompleted()
	if persistErr := m.store.Update(ctx, item); persistErr != nil {
		m.setLastError(persistErr)
		itemLogger.Error("failed to persist completion", logging.Error(persistErr))
		return persistErr
	}
	itemLogger.Info("transcription completed",
		logging.String(logging.FieldEventType, "item_complete"),
		logging.String("output", item.OutputPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	m.setLastItem(item)
	return nil
}

func (m *Manager) failItem(ctx context.Context, logger *slog.Logger, item *queue.Item, cause error) {
	item.SetFailed(cause.Error())
	logger.Error("transcription failed",
		logging.Error(cause),
		logging.String(logging.FieldEventType, "item_failure"),
	)
	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist failure")
		} else {
			logger.Error("failed to persist item failure", logging.Error(err))
		}
	}
	m.setLastItem(item)
}

// persistProgress throttles per-fragment progress writes to the store.
func (m *Manager) persistProgress(ctx context.Context, item *queue.Item) func(ratio float64) {
	var lastWrite time.Time
	return func(ratio float64) {
		now := time.Now()
		if ratio < 1 && now.Sub(lastWrite) < time.Second {
			return
		}
		lastWrite = now
		if err := m.store.Update(ctx, item); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Debug("progress persist failed", logging.Error(err))
		}
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context, wait time.Duration) {
	if wait <= 0 {
		wait = time.Second
	}
	select {
	case <-ctx.Done():
	case <-m.kick:
	case <-time.After(wait):
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	copied := *item
	m.lastItem = &copied
	m.mu.Unlock()
}
