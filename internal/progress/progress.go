// Package progress maps observed fragment end times to a bounded completion ratio.
package progress

import (
	"fmt"
	"strings"
	"sync"
)

// Tracker accumulates the maximum fragment end time seen for one item and
// reports completion against a fixed total duration. A zero total is a defined
// edge case: the ratio is 0 until the first fragment arrives, then 1.
type Tracker struct {
	mu     sync.Mutex
	total  float64
	maxEnd float64
	seen   bool
}

// NewTracker returns a tracker for audio of the given total duration in seconds.
func NewTracker(totalSeconds float64) *Tracker {
	return &Tracker{total: totalSeconds}
}

// Observe records a fragment end time. The tracked maximum never decreases.
func (t *Tracker) Observe(endSeconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = true
	if endSeconds > t.maxEnd {
		t.maxEnd = endSeconds
	}
}

// Ratio returns the completion ratio clamped to [0, 1].
func (t *Tracker) Ratio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seen {
		return 0
	}
	if t.total <= 0 {
		return 1
	}
	ratio := t.maxEnd / t.total
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// MaxEnd returns the largest end time observed so far.
func (t *Tracker) MaxEnd() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxEnd
}

// RenderBar renders a fixed-width textual bar with a trailing percentage.
// Purely cosmetic; interactive display goes through a progress bar library in
// the CLI instead.
func RenderBar(ratio float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.Repeat("#", filled))
	b.WriteString(strings.Repeat("-", width-filled))
	fmt.Fprintf(&b, "] %3.0f%%", ratio*100)
	return b.String()
}
