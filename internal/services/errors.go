package services

import (
	"errors"
	"fmt"
	"strings"
)

// Item-scoped failure markers. Each maps to a Failed queue status and never
// aborts the queue.
var (
	ErrInputNotFound     = errors.New("input not found")
	ErrLocaleUnsupported = errors.New("locale unsupported")
	ErrModelProvisioning = errors.New("model provisioning failed")
	ErrAnalysis          = errors.New("analysis failed")
	ErrEmptyResult       = errors.New("no transcription produced")
	ErrOutputWrite       = errors.New("output write failed")
)

// ErrEngineUnavailable is the only process-fatal condition: the speech engine
// is missing entirely, so no item could ever succeed.
var ErrEngineUnavailable = errors.New("speech engine unavailable")

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrAnalysis
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should terminate the run instead of
// failing a single queue item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrEngineUnavailable)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
