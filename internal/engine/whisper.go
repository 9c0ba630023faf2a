package engine

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	langpkg "murmur/internal/language"
	"murmur/internal/segment"
	"murmur/internal/services"
)

// whisperLanguages is the set of base languages whisper.cpp multilingual
// models recognize.
var whisperLanguages = []string{
	"en", "zh", "de", "es", "ru", "ko", "fr", "ja", "pt", "tr",
	"pl", "ca", "nl", "ar", "sv", "it", "id", "hi", "fi", "vi",
	"he", "uk", "el", "ms", "cs", "ro", "da", "hu", "ta", "no",
	"th", "ur", "hr", "bg", "lt", "la", "mi", "ml", "cy", "sk",
	"te", "fa", "lv", "bn", "sr", "az", "sl", "kn", "et", "mk",
}

// WhisperConfig configures the whisper.cpp adapter.
type WhisperConfig struct {
	Binary          string
	Model           string
	ModelCacheDir   string
	ModelBaseURL    string
	DownloadTimeout int
	Threads         int
}

// Whisper runs whisper.cpp's command line binary and streams its textual
// segment output as timed fragments.
type Whisper struct {
	cfg WhisperConfig

	// commandRunner overrides subprocess startup in tests.
	commandRunner func(ctx context.Context, name string, args ...string) (*exec.Cmd, error)
}

// NewWhisper creates a whisper.cpp adapter.
func NewWhisper(cfg WhisperConfig) *Whisper {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "whisper-cli"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "base"
	}
	return &Whisper{cfg: cfg}
}

// Available verifies the engine binary exists on this host.
func (w *Whisper) Available() error {
	if _, err := exec.LookPath(w.cfg.Binary); err != nil {
		return services.Wrap(services.ErrEngineUnavailable, "engine", "lookup", w.cfg.Binary, err)
	}
	return nil
}

// Supported reports whether the locale's base language is recognized.
func (w *Whisper) Supported(locale string) bool {
	return langpkg.Matches(locale, whisperLanguages)
}

// Analyze launches whisper.cpp over the audio file and streams parsed
// segments. The subprocess writes one segment line at a time; parsing them as
// they appear gives ordered, one-at-a-time fragment delivery.
func (w *Whisper) Analyze(ctx context.Context, audioPath, locale string) (*Stream, error) {
	base, err := langpkg.Base(locale)
	if err != nil {
		return nil, services.Wrap(services.ErrLocaleUnsupported, "engine", "locale", locale, err)
	}

	args := []string{"-m", w.ModelPath(), "-f", audioPath, "-l", base, "--no-prints"}
	if w.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.cfg.Threads))
	}

	cmd, err := w.startCommand(ctx, w.cfg.Binary, args...)
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrAnalysis, "engine", "pipe", audioPath, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrAnalysis, "engine", "start", audioPath, err)
	}

	stream := NewStream(1)
	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			fragment, ok := parseSegmentLine(scanner.Text())
			if !ok {
				continue
			}
			select {
			case stream.fragments <- fragment:
			case <-ctx.Done():
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
				stream.Finish(ctx.Err())
				return
			}
		}
		scanErr := scanner.Err()
		waitErr := cmd.Wait()
		switch {
		case waitErr != nil:
			stream.Finish(services.Wrap(services.ErrAnalysis, "engine", "whisper", audioPath, waitErr))
		case scanErr != nil:
			stream.Finish(services.Wrap(services.ErrAnalysis, "engine", "read output", audioPath, scanErr))
		default:
			stream.Finish(nil)
		}
	}()
	return stream, nil
}

func (w *Whisper) startCommand(ctx context.Context, name string, args ...string) (*exec.Cmd, error) {
	if w.commandRunner != nil {
		return w.commandRunner(ctx, name, args...)
	}
	return exec.CommandContext(ctx, name, args...), nil
}

// parseSegmentLine parses whisper.cpp's progressive stdout format:
//
//	[00:00:00.000 --> 00:00:02.500]   Hello world
func parseSegmentLine(line string) (segment.Fragment, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return segment.Fragment{}, false
	}
	closing := strings.Index(line, "]")
	if closing < 0 {
		return segment.Fragment{}, false
	}
	rangeText := line[1:closing]
	parts := strings.Split(rangeText, "-->")
	if len(parts) != 2 {
		return segment.Fragment{}, false
	}
	start, err := parseClockTime(parts[0])
	if err != nil {
		return segment.Fragment{}, false
	}
	end, err := parseClockTime(parts[1])
	if err != nil {
		return segment.Fragment{}, false
	}
	text := strings.TrimSpace(line[closing+1:])
	return segment.Fragment{Text: text, Start: start, End: end}, true
}

// parseClockTime converts "HH:MM:SS.mmm" to seconds.
func parseClockTime(value string) (float64, error) {
	value = strings.TrimSpace(value)
	hms := strings.Split(value, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.ParseFloat(hms[2], 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}
