package transcribe

import (
	"fmt"
	"strings"
)

// Output format selectors accepted by the transcription and translation
// options.
const (
	FormatPlainText     = "plain_text"
	FormatFormattedText = "formatted_text"
	FormatSRT           = "srt"
	FormatVTT           = "vtt"
)

// Render produces the transcript in the requested output format from the
// engine's segments. Unknown selectors fall back to plain text; validation
// rejects them before a job gets this far.
func Render(format string, segments []Segment) string {
	switch format {
	case FormatFormattedText:
		return renderFormatted(segments)
	case FormatSRT:
		return renderSRT(segments)
	case FormatVTT:
		return renderVTT(segments)
	default:
		return renderPlain(segments)
	}
}

func renderPlain(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func renderFormatted(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		fmt.Fprintf(&b, "[%s --> %s] %s\n", timestamp(s.Start, "."), timestamp(s.End, "."), strings.TrimSpace(s.Text))
	}
	return b.String()
}

func renderSRT(segments []Segment) string {
	var b strings.Builder
	for i, s := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, timestamp(s.Start, ","), timestamp(s.End, ","), strings.TrimSpace(s.Text))
	}
	return b.String()
}

func renderVTT(segments []Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range segments {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", timestamp(s.Start, "."), timestamp(s.End, "."), strings.TrimSpace(s.Text))
	}
	return b.String()
}

// timestamp formats seconds as HH:MM:SS<sep>mmm. SRT wants a comma before
// the milliseconds, VTT a dot.
func timestamp(seconds float64, sep string) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}
