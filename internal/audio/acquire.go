package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Acquirer resolves a job's audio source into a local file inside the
// job-scoped directory handed to Acquire. The caller owns the directory and
// removes it when the job finishes.
type Acquirer struct {
	client *http.Client
}

func NewAcquirer() *Acquirer {
	return &Acquirer{
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Acquire produces exactly one local file from the source: a download for a
// URL source, a decode for an inline source. Any failure is fatal for the job.
func (a *Acquirer) Acquire(ctx context.Context, dir string, src Source) (string, error) {
	if src.IsURL() {
		return a.download(ctx, dir, src.url)
	}
	return decodeInline(dir, src.inline)
}

func (a *Acquirer) download(ctx context.Context, dir, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download audio: unexpected status %d", resp.StatusCode)
	}

	dst := filepath.Join(dir, downloadName(rawURL))
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return dst, nil
}

func decodeInline(dir, b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode base64 audio: %w", err)
	}

	// Inline payloads carry no name, so a fixed wav suffix is assumed.
	dst := filepath.Join(dir, "input.wav")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write decoded audio: %w", err)
	}
	return dst, nil
}

// downloadName keeps the remote file's base name so the normalizer can read
// the original extension. Unusable paths fall back to a generic name.
func downloadName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "audio"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "audio"
	}
	return name
}
