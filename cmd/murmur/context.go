package main

import (
	"strings"
	"sync"

	"murmur/internal/config"
	"murmur/internal/engine"
	"murmur/internal/queue"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withStore(fn func(cfg *config.Config, store *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) newEngine(cfg *config.Config) engine.Engine {
	return engine.NewWhisper(engine.WhisperConfig{
		Binary:          cfg.Engine.Binary,
		Model:           cfg.Engine.Model,
		ModelCacheDir:   cfg.Paths.ModelCacheDir,
		ModelBaseURL:    cfg.Engine.ModelBaseURL,
		DownloadTimeout: cfg.Engine.DownloadTimeout,
		Threads:         cfg.Engine.Threads,
	})
}
