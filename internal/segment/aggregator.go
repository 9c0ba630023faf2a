package segment

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChars is the default character budget for one chunk.
	DefaultMaxChars = 80
	// DefaultMaxSeconds is the default duration budget for one chunk.
	DefaultMaxSeconds = 6.0
)

// Limits control when the aggregator closes the open chunk and starts a new one.
type Limits struct {
	MaxChars   int
	MaxSeconds float64
}

// DefaultLimits returns the limits used when a caller does not override them.
func DefaultLimits() Limits {
	return Limits{MaxChars: DefaultMaxChars, MaxSeconds: DefaultMaxSeconds}
}

func (l Limits) normalized() Limits {
	if l.MaxChars <= 0 {
		l.MaxChars = DefaultMaxChars
	}
	if l.MaxSeconds <= 0 {
		l.MaxSeconds = DefaultMaxSeconds
	}
	return l
}

// Aggregator merges a time-ordered fragment stream into chunks in a single
// pass. Blank fragments are discarded. The open accumulator is closed when
// adding the next fragment would exceed the duration or character budget, or
// when the accumulated text already ends in sentence punctuation: a short,
// complete sentence is not glued to the start of the next one.
//
// The limits split, they never truncate. A single fragment longer than
// MaxChars still becomes a whole chunk.
type Aggregator struct {
	limits Limits
	open   *Chunk
	done   []Chunk
}

// NewAggregator returns an aggregator using the provided limits; zero values
// fall back to the defaults.
func NewAggregator(limits Limits) *Aggregator {
	return &Aggregator{limits: limits.normalized()}
}

// Add feeds one fragment into the accumulator.
func (a *Aggregator) Add(fragment Fragment) {
	text := strings.TrimSpace(fragment.Text)
	if text == "" {
		return
	}

	if a.open == nil {
		a.open = &Chunk{Text: text, Start: fragment.Start, End: fragment.End}
		return
	}

	candidateSeconds := fragment.End - a.open.Start
	candidateChars := utf8.RuneCountInString(a.open.Text) + 1 + utf8.RuneCountInString(text)

	if candidateSeconds > a.limits.MaxSeconds ||
		candidateChars > a.limits.MaxChars ||
		endsSentence(a.open.Text) {
		a.done = append(a.done, *a.open)
		a.open = &Chunk{Text: text, Start: fragment.Start, End: fragment.End}
		return
	}

	a.open.Text += " " + text
	a.open.End = fragment.End
}

// Flush emits the open accumulator, if any, and returns every finished chunk.
// The aggregator is reset and may be reused for another stream.
func (a *Aggregator) Flush() []Chunk {
	if a.open != nil {
		a.done = append(a.done, *a.open)
		a.open = nil
	}
	chunks := a.done
	a.done = nil
	return chunks
}

// Aggregate drains a fragment channel through an aggregator and returns the
// resulting chunks once the producer closes the channel.
func Aggregate(fragments <-chan Fragment, limits Limits) []Chunk {
	agg := NewAggregator(limits)
	for fragment := range fragments {
		agg.Add(fragment)
	}
	return agg.Flush()
}

func endsSentence(text string) bool {
	last, size := utf8.DecodeLastRuneInString(text)
	if size == 0 {
		return false
	}
	switch last {
	case '.', '!', '?':
		return true
	}
	return false
}
