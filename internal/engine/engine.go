// Package engine abstracts the external speech recognition engine and
// provides the whisper.cpp command line adapter.
package engine

import (
	"context"

	"murmur/internal/segment"
)

// Engine is the contract the transcription stage drives. Analyze yields a
// lazy, finite fragment stream; provisioning is checked and resolved before
// analysis starts.
type Engine interface {
	// Available reports whether the engine can run at all on this host.
	// A non-nil error is process-fatal, not item-scoped.
	Available() error
	// Supported reports whether the engine recognizes the locale's language.
	Supported(locale string) bool
	// ModelInstalled reports whether the recognition model is present locally.
	ModelInstalled() bool
	// EnsureModel downloads the recognition model if it is not installed.
	EnsureModel(ctx context.Context) error
	// Analyze starts recognition over an audio file and returns the fragment
	// stream. Fragments arrive in time order, one at a time.
	Analyze(ctx context.Context, audioPath, locale string) (*Stream, error)
}

// Stream delivers fragments from a running analysis. The producer closes the
// fragment channel once the engine finishes; Err is valid after that.
type Stream struct {
	fragments chan segment.Fragment
	err       error
}

// NewStream creates a stream with the given channel buffer. Exposed so tests
// can hand-feed fragments through a fake engine.
func NewStream(buffer int) *Stream {
	return &Stream{fragments: make(chan segment.Fragment, buffer)}
}

// Fragments returns the receive side of the fragment stream.
func (s *Stream) Fragments() <-chan segment.Fragment {
	return s.fragments
}

// Err returns the terminal analysis error, if any. Only meaningful once the
// fragment channel is closed.
func (s *Stream) Err() error {
	return s.err
}

// Send publishes one fragment; blocks until the consumer takes it.
func (s *Stream) Send(fragment segment.Fragment) {
	s.fragments <- fragment
}

// Finish records the terminal error and closes the fragment channel. The
// error write happens before the close, so consumers that drain the channel
// observe it safely.
func (s *Stream) Finish(err error) {
	s.err = err
	close(s.fragments)
}
