package transcript

import (
	"fmt"
	"strings"

	"murmur/internal/segment"
)

// Format selects the output rendering for a transcription.
type Format string

const (
	FormatText Format = "txt"
	FormatSRT  Format = "srt"
)

// ParseFormat converts a string into a known Format.
func ParseFormat(value string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText:
		return FormatText, true
	case FormatSRT:
		return FormatSRT, true
	}
	return "", false
}

// Extension returns the output file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// TimestampStyle controls the optional leading timestamp of plain-text lines.
type TimestampStyle string

const (
	TimestampNone     TimestampStyle = "none"
	TimestampReadable TimestampStyle = "readable"
	TimestampSeconds  TimestampStyle = "seconds"
)

// ParseTimestampStyle converts a string into a known TimestampStyle.
func ParseTimestampStyle(value string) (TimestampStyle, bool) {
	switch TimestampStyle(strings.ToLower(strings.TrimSpace(value))) {
	case TimestampNone, "":
		return TimestampNone, true
	case TimestampReadable:
		return TimestampReadable, true
	case TimestampSeconds:
		return TimestampSeconds, true
	}
	return "", false
}

// Render formats chunks using the requested format. The style only applies to
// plain text.
func Render(chunks []segment.Chunk, format Format, style TimestampStyle) (string, error) {
	switch format {
	case FormatSRT:
		return RenderSRT(chunks), nil
	case FormatText:
		return RenderText(chunks, style), nil
	}
	return "", fmt.Errorf("unknown transcript format %q", format)
}

// RenderSRT renders chunks as numbered SubRip cues separated by blank lines,
// with no trailing blank line after the last cue.
func RenderSRT(chunks []segment.Chunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s", i+1, FormatSRTTime(chunk.Start), FormatSRTTime(chunk.End), chunk.Text)
	}
	return b.String()
}

// RenderText renders chunks one per line with an optional leading timestamp,
// trimmed of surrounding whitespace.
func RenderText(chunks []segment.Chunk, style TimestampStyle) string {
	lines := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		switch style {
		case TimestampReadable:
			lines = append(lines, fmt.Sprintf("[%s] %s", formatReadableTime(chunk.Start), chunk.Text))
		case TimestampSeconds:
			lines = append(lines, fmt.Sprintf("[%.1fs] %s", chunk.Start, chunk.Text))
		default:
			lines = append(lines, chunk.Text)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
