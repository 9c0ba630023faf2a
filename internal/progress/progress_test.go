package progress_test

import (
	"testing"

	"murmur/internal/progress"
)

func TestTrackerRatioBounds(t *testing.T) {
	tr := progress.NewTracker(10)
	if got := tr.Ratio(); got != 0 {
		t.Fatalf("expected 0 before observations, got %v", got)
	}

	tr.Observe(2.5)
	if got := tr.Ratio(); got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}

	tr.Observe(50)
	if got := tr.Ratio(); got != 1 {
		t.Errorf("expected clamp to 1, got %v", got)
	}
}

func TestTrackerMonotonic(t *testing.T) {
	tr := progress.NewTracker(100)
	ends := []float64{1, 5, 3, 5, 20, 10}
	var prev float64
	for _, end := range ends {
		tr.Observe(end)
		ratio := tr.Ratio()
		if ratio < prev {
			t.Fatalf("ratio regressed from %v to %v after observing %v", prev, ratio, end)
		}
		prev = ratio
	}
	if tr.MaxEnd() != 20 {
		t.Errorf("expected max end 20, got %v", tr.MaxEnd())
	}
}

func TestTrackerZeroTotal(t *testing.T) {
	tr := progress.NewTracker(0)
	if got := tr.Ratio(); got != 0 {
		t.Fatalf("expected 0 before first fragment, got %v", got)
	}
	tr.Observe(0.1)
	if got := tr.Ratio(); got != 1 {
		t.Fatalf("expected 1 once a fragment is observed, got %v", got)
	}
}

func TestRenderBar(t *testing.T) {
	if got := progress.RenderBar(0.5, 10); got != "[#####-----]  50%" {
		t.Errorf("unexpected bar %q", got)
	}
	if got := progress.RenderBar(-1, 4); got != "[----]   0%" {
		t.Errorf("unexpected clamped bar %q", got)
	}
	if got := progress.RenderBar(2, 4); got != "[####] 100%" {
		t.Errorf("unexpected clamped bar %q", got)
	}
}
