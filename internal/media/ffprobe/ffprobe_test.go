package ffprobe_test

import (
	"testing"

	"murmur/internal/media/ffprobe"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "pcm_s16le", "codec_type": "audio", "duration": "12.480000", "sample_rate": "16000", "channels": 1}
  ],
  "format": {"filename": "sample.wav", "duration": "12.500000", "format_name": "wav"}
}`

func TestParseDurationAndAudio(t *testing.T) {
	info, err := ffprobe.Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !info.HasAudio() {
		t.Error("expected audio stream")
	}
	if got := info.DurationSeconds(); got != 12.5 {
		t.Errorf("DurationSeconds = %v, want 12.5", got)
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	info, err := ffprobe.Parse([]byte(`{
	  "streams": [{"index":0,"codec_type":"audio","duration":"3.25"}],
	  "format": {"filename":"x.ogg"}
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := info.DurationSeconds(); got != 3.25 {
		t.Errorf("DurationSeconds = %v, want 3.25", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ffprobe.Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNoAudioStreams(t *testing.T) {
	info, err := ffprobe.Parse([]byte(`{"streams":[{"index":0,"codec_type":"video"}],"format":{}}`))
	if err != nil {
		t.Fatal(err)
	}
	if info.HasAudio() {
		t.Error("video-only container reported as having audio")
	}
	if info.DurationSeconds() != 0 {
		t.Error("expected zero duration")
	}
}
