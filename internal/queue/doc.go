// Package queue persists transcription work items in SQLite and defines
// their status lifecycle.
package queue
