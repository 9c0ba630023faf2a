package transcript_test

import (
	"testing"

	"murmur/internal/segment"
	"murmur/internal/transcript"
)

func TestRenderSRTGolden(t *testing.T) {
	chunks := []segment.Chunk{
		{Text: "Hello world", Start: 0.0, End: 2.5},
		{Text: "Second line", Start: 2.5, End: 5.0},
	}

	want := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"Hello world\n" +
		"\n" +
		"2\n" +
		"00:00:02,500 --> 00:00:05,000\n" +
		"Second line"

	got := transcript.RenderSRT(chunks)
	if got != want {
		t.Fatalf("SRT output mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderSRTIdempotent(t *testing.T) {
	chunks := []segment.Chunk{
		{Text: "Repeatable", Start: 1.25, End: 3.75},
	}
	first := transcript.RenderSRT(chunks)
	second := transcript.RenderSRT(chunks)
	if first != second {
		t.Fatal("formatting the same chunks twice produced different output")
	}
}

func TestRenderSRTEmpty(t *testing.T) {
	if got := transcript.RenderSRT(nil); got != "" {
		t.Fatalf("expected empty output for no chunks, got %q", got)
	}
}

func TestFormatSRTTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{2.5, "00:00:02,500"},
		{61.001, "00:01:01,001"},
		{3600, "01:00:00,000"},
		{3599.999, "00:59:59,999"},
		{90061.25, "25:01:01,250"},
		{1.9996, "00:00:02,000"},
	}
	for _, tc := range cases {
		if got := transcript.FormatSRTTime(tc.seconds); got != tc.want {
			t.Errorf("FormatSRTTime(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestParseSRTTimeRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 2.5, 59.999, 3661.25, 90000} {
		parsed, err := transcript.ParseSRTTime(transcript.FormatSRTTime(seconds))
		if err != nil {
			t.Fatalf("ParseSRTTime failed for %v: %v", seconds, err)
		}
		if parsed != seconds {
			t.Errorf("round trip %v -> %v", seconds, parsed)
		}
	}
}

func TestParseSRTTimeRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "1:2", "aa:bb:cc,ddd", "00:00:00"} {
		if _, err := transcript.ParseSRTTime(value); err == nil {
			t.Errorf("expected error parsing %q", value)
		}
	}
}

func TestRenderTextStyles(t *testing.T) {
	chunks := []segment.Chunk{
		{Text: "First line", Start: 12.34, End: 14.0},
		{Text: "Second line", Start: 3725.0, End: 3730.0},
	}

	cases := []struct {
		style transcript.TimestampStyle
		want  string
	}{
		{transcript.TimestampNone, "First line\nSecond line"},
		{transcript.TimestampReadable, "[00:12] First line\n[01:02:05] Second line"},
		{transcript.TimestampSeconds, "[12.3s] First line\n[3725.0s] Second line"},
	}
	for _, tc := range cases {
		if got := transcript.RenderText(chunks, tc.style); got != tc.want {
			t.Errorf("style %q: got %q, want %q", tc.style, got, tc.want)
		}
	}
}

func TestRenderTextTrimsResult(t *testing.T) {
	got := transcript.RenderText(nil, transcript.TimestampNone)
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	if f, ok := transcript.ParseFormat(" SRT "); !ok || f != transcript.FormatSRT {
		t.Errorf("ParseFormat SRT = %v, %v", f, ok)
	}
	if f, ok := transcript.ParseFormat("txt"); !ok || f != transcript.FormatText {
		t.Errorf("ParseFormat txt = %v, %v", f, ok)
	}
	if _, ok := transcript.ParseFormat("vtt"); ok {
		t.Error("expected vtt to be rejected")
	}
	if transcript.FormatSRT.Extension() != ".srt" {
		t.Errorf("unexpected extension %q", transcript.FormatSRT.Extension())
	}
}

func TestParseTimestampStyle(t *testing.T) {
	if s, ok := transcript.ParseTimestampStyle(""); !ok || s != transcript.TimestampNone {
		t.Errorf("empty style = %v, %v", s, ok)
	}
	if _, ok := transcript.ParseTimestampStyle("fancy"); ok {
		t.Error("expected unknown style to be rejected")
	}
}

func TestValidateSRT(t *testing.T) {
	content := transcript.RenderSRT([]segment.Chunk{{Text: "ok", Start: 0, End: 2}})
	if issues := transcript.ValidateSRT(content, 10); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if issues := transcript.ValidateSRT("", 10); len(issues) == 0 {
		t.Fatal("expected empty content to be flagged")
	}
	late := transcript.RenderSRT([]segment.Chunk{{Text: "late", Start: 90, End: 120}})
	if issues := transcript.ValidateSRT(late, 10); len(issues) == 0 {
		t.Fatal("expected cue past audio end to be flagged")
	}
}

func TestRenderDispatch(t *testing.T) {
	chunks := []segment.Chunk{{Text: "Hi", Start: 0, End: 1}}
	if _, err := transcript.Render(chunks, transcript.FormatSRT, transcript.TimestampNone); err != nil {
		t.Fatalf("Render srt: %v", err)
	}
	if _, err := transcript.Render(chunks, "xml", transcript.TimestampNone); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
