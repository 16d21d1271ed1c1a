package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// canonicalExt marks the format both inference engines require: mono,
// 16 kHz, signed 16-bit PCM wav.
const canonicalExt = ".wav"

// Normalizer converts arbitrary audio containers to the canonical format by
// shelling out to ffmpeg. Detection is by file extension only; a file that
// already carries the canonical extension is passed through untouched.
type Normalizer struct {
	ffmpegBin string
	runner    Runner
}

func NewNormalizer(ffmpegBin string) *Normalizer {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Normalizer{ffmpegBin: ffmpegBin, runner: execRunner{}}
}

// NewNormalizerWithRunner injects a command runner; used by tests.
func NewNormalizerWithRunner(ffmpegBin string, r Runner) *Normalizer {
	n := NewNormalizer(ffmpegBin)
	n.runner = r
	return n
}

// Normalize returns a path to canonical-format audio. The transcoded copy is
// a sibling of the input with the original base name and a wav extension.
func (n *Normalizer) Normalize(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), canonicalExt) {
		return path, nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(filepath.Dir(path), base+canonicalExt)

	args := []string{
		"-y",
		"-i", path,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		out,
	}
	if output, err := n.runner.Run(ctx, n.ffmpegBin, args...); err != nil {
		return "", fmt.Errorf("transcode audio: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("transcode audio: missing output %s: %w", out, err)
	}
	return out, nil
}
