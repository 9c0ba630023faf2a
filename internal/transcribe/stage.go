// Package transcribe drives one queue item through probing, recognition,
// aggregation, formatting, and output writing.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"murmur/internal/config"
	"murmur/internal/engine"
	"murmur/internal/fileutil"
	langpkg "murmur/internal/language"
	"murmur/internal/logging"
	"murmur/internal/media/ffprobe"
	"murmur/internal/progress"
	"murmur/internal/queue"
	"murmur/internal/segment"
	"murmur/internal/services"
	"murmur/internal/transcript"
)

// Result is the machine-readable record produced for one transcription.
type Result struct {
	Success     bool    `json:"success"`
	OutputPath  string  `json:"outputPath,omitempty"`
	Error       string  `json:"error,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	ElapsedTime float64 `json:"elapsedTime,omitempty"`
}

// Stage transcribes a single work item. It is owned by the queue driver (or
// by the one-shot CLI path) and processes one item at a time.
type Stage struct {
	cfg    *config.Config
	engine engine.Engine
	logger *slog.Logger

	// probe is replaced in tests to avoid spawning ffprobe.
	probe func(ctx context.Context, path string) (ffprobe.Info, error)
	// onProgress, when set, receives the completion ratio as fragments arrive.
	onProgress func(ratio float64)
}

// NewStage constructs the transcription stage.
func NewStage(cfg *config.Config, eng engine.Engine, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Stage{
		cfg:    cfg,
		engine: eng,
		logger: logging.NewComponentLogger(logger, "transcribe"),
	}
	s.probe = func(ctx context.Context, path string) (ffprobe.Info, error) {
		return ffprobe.Probe(ctx, cfg.Engine.FFprobeBinary, path)
	}
	return s
}

// SetLogger replaces the stage logger; used by the driver to attach item context.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetProgressFunc registers a progress ratio callback.
func (s *Stage) SetProgressFunc(fn func(ratio float64)) {
	s.onProgress = fn
}

// SetProbeFunc overrides duration probing; test hook.
func (s *Stage) SetProbeFunc(fn func(ctx context.Context, path string) (ffprobe.Info, error)) {
	if fn != nil {
		s.probe = fn
	}
}

// Prepare validates the item and fills in derived fields: normalized locale,
// resolved output path, and the probed audio duration.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	if !fileutil.FileExists(item.SourcePath) {
		return services.Wrap(services.ErrInputNotFound, "transcribe", "input", item.SourcePath, nil)
	}

	if strings.TrimSpace(item.Locale) == "" {
		item.Locale = s.cfg.Transcription.Locale
	}
	normalized, err := langpkg.Normalize(item.Locale)
	if err != nil {
		return services.Wrap(services.ErrLocaleUnsupported, "transcribe", "locale", item.Locale, err)
	}
	item.Locale = normalized

	format, ok := transcript.ParseFormat(item.Format)
	if !ok {
		if format, ok = transcript.ParseFormat(s.cfg.Transcription.Format); !ok {
			format = transcript.FormatText
		}
	}
	item.Format = string(format)

	if strings.TrimSpace(item.OutputPath) == "" {
		item.OutputPath = s.defaultOutputPath(item.SourcePath, format)
	}

	info, err := s.probe(ctx, item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrAnalysis, "transcribe", "probe", item.SourcePath, err)
	}
	if !info.HasAudio() {
		return services.Wrap(services.ErrAnalysis, "transcribe", "probe",
			fmt.Sprintf("%s: no audio stream", item.SourcePath), nil)
	}
	item.DurationSeconds = info.DurationSeconds()
	item.SetProgress("Prepared", 0)
	return nil
}

// Execute provisions the model, runs the analysis, aggregates the fragment
// stream, and writes the formatted transcript.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	if !s.engine.Supported(item.Locale) {
		return services.Wrap(services.ErrLocaleUnsupported, "transcribe", "locale", item.Locale, nil)
	}
	if !s.engine.ModelInstalled() {
		s.logger.Info("downloading recognition model",
			logging.String("locale", item.Locale),
			logging.Int64(logging.FieldItemID, item.ID),
		)
		if err := s.engine.EnsureModel(ctx); err != nil {
			return err
		}
	}

	stream, err := s.engine.Analyze(ctx, item.SourcePath, item.Locale)
	if err != nil {
		return err
	}

	limits := segment.Limits{
		MaxChars:   s.cfg.Transcription.MaxCharsPerChunk,
		MaxSeconds: s.cfg.Transcription.MaxChunkSeconds,
	}
	agg := segment.NewAggregator(limits)
	tracker := progress.NewTracker(item.DurationSeconds)

	for fragment := range stream.Fragments() {
		agg.Add(fragment)
		tracker.Observe(fragment.End)
		ratio := tracker.Ratio()
		item.SetProgress("Transcribing", ratio*100)
		if s.onProgress != nil {
			s.onProgress(ratio)
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}

	chunks := agg.Flush()
	if len(chunks) == 0 {
		return services.Wrap(services.ErrEmptyResult, "transcribe", "aggregate", item.SourcePath, nil)
	}

	format, _ := transcript.ParseFormat(item.Format)
	style, ok := transcript.ParseTimestampStyle(s.cfg.Transcription.TimestampStyle)
	if !ok {
		style = transcript.TimestampNone
	}
	content, err := transcript.Render(chunks, format, style)
	if err != nil {
		return services.Wrap(services.ErrAnalysis, "transcribe", "render", item.SourcePath, err)
	}
	if format == transcript.FormatSRT {
		if issues := transcript.ValidateSRT(content, item.DurationSeconds); len(issues) > 0 {
			s.logger.Warn("subtitle validation issues",
				logging.String("issues", strings.Join(issues, ", ")),
				logging.Int64(logging.FieldItemID, item.ID),
			)
		}
	}

	if err := fileutil.WriteFileAtomic(item.OutputPath, []byte(content+"\n"), 0o644); err != nil {
		return services.Wrap(services.ErrOutputWrite, "transcribe", "write", item.OutputPath, err)
	}

	item.SetProgress("Completed", 100)
	s.logger.Info("transcript written",
		logging.String("output", item.OutputPath),
		logging.Int("chunks", len(chunks)),
		logging.Float64("audio_seconds", item.DurationSeconds),
	)
	return nil
}

// Run drives Prepare and Execute for one item and reports the outcome as a
// result record alongside the underlying error. Used by the one-shot CLI path.
func (s *Stage) Run(ctx context.Context, item *queue.Item) (Result, error) {
	started := time.Now()
	err := s.Prepare(ctx, item)
	if err == nil {
		err = s.Execute(ctx, item)
	}
	result := Result{
		Duration:    item.DurationSeconds,
		ElapsedTime: time.Since(started).Seconds(),
	}
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.Success = true
	result.OutputPath = item.OutputPath
	return result, nil
}

func (s *Stage) defaultOutputPath(sourcePath string, format transcript.Format) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	dir := s.cfg.Paths.OutputDir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Dir(sourcePath)
	}
	return filepath.Join(dir, base+format.Extension())
}
