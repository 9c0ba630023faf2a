package services_test

import (
	"errors"
	"strings"
	"testing"

	"murmur/internal/services"
)

func TestWrapCarriesMarkerAndDetail(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrAnalysis, "transcribe", "analyze", "/tmp/a.wav", cause)

	if !errors.Is(err, services.ErrAnalysis) {
		t.Fatal("expected wrapped error to match marker")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error to match cause")
	}
	for _, fragment := range []string{"transcribe", "analyze", "/tmp/a.wav", "boom"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("message %q missing %q", err.Error(), fragment)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrLocaleUnsupported, "transcribe", "locale", "xx-XX", nil)
	if !errors.Is(err, services.ErrLocaleUnsupported) {
		t.Fatal("expected marker match")
	}
}

func TestWrapNilMarkerDefaultsToAnalysis(t *testing.T) {
	err := services.Wrap(nil, "", "", "", errors.New("x"))
	if !errors.Is(err, services.ErrAnalysis) {
		t.Fatal("expected nil marker to default to analysis")
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	if services.IsFatal(services.Wrap(services.ErrAnalysis, "s", "o", "m", nil)) {
		t.Error("analysis errors are item-scoped, not fatal")
	}
	if !services.IsFatal(services.Wrap(services.ErrEngineUnavailable, "s", "o", "m", nil)) {
		t.Error("engine unavailability is process fatal")
	}
}
