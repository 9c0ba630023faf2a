// Package segment merges timed transcription fragments into subtitle-sized chunks.
package segment
