// Package workflow coordinates queue processing. A single manager goroutine
// claims pending items one at a time, drives them through the transcription
// stage, and records the terminal outcome. A failed item never blocks the
// items behind it.
package workflow
