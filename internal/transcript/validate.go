package transcript

import (
	"strings"
)

// CountSRTCues returns the number of cue blocks in rendered SRT content.
func CountSRTCues(content string) int {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(trimmed, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// LastSRTTimestamp returns the largest cue end time found in rendered SRT
// content, in seconds. Unparseable lines are skipped.
func LastSRTTimestamp(content string) float64 {
	var last float64
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			continue
		}
		seconds, err := ParseSRTTime(parts[1])
		if err != nil {
			continue
		}
		if seconds > last {
			last = seconds
		}
	}
	return last
}

// ValidateSRT checks rendered SRT content for structural issues before it is
// written to disk. An empty slice means validation passed.
func ValidateSRT(content string, audioSeconds float64) []string {
	var issues []string

	cues := CountSRTCues(content)
	if cues == 0 {
		return []string{"empty_subtitle_content"}
	}

	last := LastSRTTimestamp(content)
	if last == 0 {
		issues = append(issues, "no_valid_timestamps")
	}
	if audioSeconds > 0 && last > audioSeconds+1 {
		issues = append(issues, "cue_past_audio_end")
	}
	return issues
}
