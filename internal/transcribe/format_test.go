package transcribe

import (
	"strings"
	"testing"
)

var formatSegments = []Segment{
	{ID: 0, Start: 0, End: 2.5, Text: " Hello there."},
	{ID: 1, Start: 2.5, End: 61.04, Text: " General Kenobi."},
}

func TestRenderPlainText(t *testing.T) {
	got := Render(FormatPlainText, formatSegments)
	want := "Hello there. General Kenobi."
	if got != want {
		t.Fatalf("Render(plain_text) = %q, want %q", got, want)
	}
}

func TestRenderSRT(t *testing.T) {
	got := Render(FormatSRT, formatSegments)

	want := "1\n00:00:00,000 --> 00:00:02,500\nHello there.\n\n" +
		"2\n00:00:02,500 --> 00:01:01,040\nGeneral Kenobi.\n\n"
	if got != want {
		t.Fatalf("Render(srt) = %q, want %q", got, want)
	}
}

func TestRenderVTT(t *testing.T) {
	got := Render(FormatVTT, formatSegments)

	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Fatalf("vtt output missing header: %q", got)
	}
	if !strings.Contains(got, "00:00:00.000 --> 00:00:02.500\nHello there.") {
		t.Fatalf("vtt output missing cue: %q", got)
	}
}

func TestRenderFormattedText(t *testing.T) {
	got := Render(FormatFormattedText, formatSegments)

	if !strings.Contains(got, "[00:00:00.000 --> 00:00:02.500] Hello there.") {
		t.Fatalf("formatted output missing line: %q", got)
	}
}

func TestRenderEmptySegments(t *testing.T) {
	if got := Render(FormatPlainText, nil); got != "" {
		t.Fatalf("Render(plain_text, nil) = %q, want empty", got)
	}
	if got := Render(FormatSRT, nil); got != "" {
		t.Fatalf("Render(srt, nil) = %q, want empty", got)
	}
}

func TestTimestampRounding(t *testing.T) {
	tests := []struct {
		seconds float64
		sep     string
		want    string
	}{
		{0, ",", "00:00:00,000"},
		{1.0015, ".", "00:00:01.002"},
		{3661.5, ",", "01:01:01,500"},
		{-1, ".", "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := timestamp(tt.seconds, tt.sep); got != tt.want {
			t.Errorf("timestamp(%v, %q) = %q, want %q", tt.seconds, tt.sep, got, tt.want)
		}
	}
}
