package queue

import (
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
//
// pending -> transcribing -> completed | failed
//
// completed and failed are terminal; failed items can only re-enter the
// lifecycle through an explicit retry, which rewrites them to pending.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusTranscribing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transition leaves the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total        int
	Pending      int
	Transcribing int
	Completed    int
	Failed       int
}

// Item represents one audio file queued for transcription, persisted in SQLite.
type Item struct {
	ID              int64
	SourcePath      string
	OutputPath      string
	Format          string
	Locale          string
	Status          Status
	ErrorMessage    string
	DurationSeconds float64
	ProgressPercent float64
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Title returns a short display name for the item.
func (i Item) Title() string {
	base := strings.TrimSpace(filepath.Base(i.SourcePath))
	if base == "" || base == "." {
		return "(unknown)"
	}
	return base
}

// SetProgress updates the progress fields together.
func (i *Item) SetProgress(message string, percent float64) {
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetFailed marks the item as failed with the given human-readable reason.
func (i *Item) SetFailed(reason string) {
	i.Status = StatusFailed
	i.ErrorMessage = reason
	i.ProgressPercent = 0
	i.ProgressMessage = reason
}

// SetCompleted marks the item as completed.
func (i *Item) SetCompleted() {
	i.Status = StatusCompleted
	i.ErrorMessage = ""
	i.ProgressPercent = 100
	if strings.TrimSpace(i.ProgressMessage) == "" {
		i.ProgressMessage = "Completed"
	}
}
