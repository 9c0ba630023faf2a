package config

import (
	"fmt"
	"strings"

	"murmur/internal/language"
	"murmur/internal/transcript"
)

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	var problems []string

	if c.Transcription.MaxCharsPerChunk <= 0 {
		problems = append(problems, "transcription.max_chars_per_chunk must be positive")
	}
	if c.Transcription.MaxChunkSeconds <= 0 {
		problems = append(problems, "transcription.max_chunk_seconds must be positive")
	}
	if _, ok := transcript.ParseFormat(c.Transcription.Format); !ok {
		problems = append(problems, fmt.Sprintf("transcription.format must be txt or srt, got %q", c.Transcription.Format))
	}
	if _, ok := transcript.ParseTimestampStyle(c.Transcription.TimestampStyle); !ok {
		problems = append(problems, fmt.Sprintf("transcription.timestamp_style must be none, readable, or seconds, got %q", c.Transcription.TimestampStyle))
	}
	if strings.TrimSpace(c.Transcription.Locale) != "" {
		if _, err := language.Normalize(c.Transcription.Locale); err != nil {
			problems = append(problems, fmt.Sprintf("transcription.locale: %v", err))
		}
	}
	if strings.TrimSpace(c.Engine.Binary) == "" {
		problems = append(problems, "engine.binary must not be empty")
	}
	if strings.TrimSpace(c.Engine.Model) == "" {
		problems = append(problems, "engine.model must not be empty")
	}
	if c.Workflow.QueuePollInterval <= 0 {
		problems = append(problems, "workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		problems = append(problems, "workflow.error_retry_interval must be positive")
	}
	if c.Watch.Enabled {
		if strings.TrimSpace(c.Paths.WatchDir) == "" {
			problems = append(problems, "paths.watch_dir required when watch.enabled")
		}
		if len(c.Watch.Extensions) == 0 {
			problems = append(problems, "watch.extensions must not be empty when watch.enabled")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
