package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"murmur/internal/logging"
	"murmur/internal/queue"
	"murmur/internal/transcribe"
	"murmur/internal/watcher"
	"murmur/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the queue until interrupted",
		Long:  "Run claims pending queue items one at a time and transcribes them.\nWith watching enabled, audio files dropped into the watch directory are\nenqueued automatically.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			lockPath := filepath.Join(cfg.Paths.LogDir, "murmur.lock")
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another murmur run is already active (lock %s)", lockPath)
			}
			defer lock.Unlock()

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "murmur.log")},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			eng := ctx.newEngine(cfg)
			if err := eng.Available(); err != nil {
				return err
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			stage := transcribe.NewStage(cfg, eng, logger)
			manager := workflow.NewManager(cfg, store, stage, logger)
			if err := manager.Start(signalCtx); err != nil {
				return err
			}
			defer manager.Stop()

			if watchFlag || cfg.Watch.Enabled {
				w := watcher.New(cfg, store, manager, logger)
				if err := w.Start(signalCtx); err != nil {
					return fmt.Errorf("start watcher: %w", err)
				}
				defer w.Stop()
				logger.Info("watching for dropped audio",
					logging.String("dir", cfg.Paths.WatchDir),
				)
			}

			logger.Info("queue processing started",
				logging.String("db", store.Path()),
			)
			<-signalCtx.Done()
			logger.Info("shutting down")
			return nil
		},
	}

	cmd.Flags().BoolVar(&watchFlag, "watch", false, "Also watch the drop directory for new audio files")

	return cmd
}
