package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// PyannoteEngineConfig holds configuration for the pyannote server backend.
type PyannoteEngineConfig struct {
	BaseURL string // default: "http://localhost:9001"
	Device  string // device the server pins the pipeline to, e.g. "cuda"
}

// PyannoteEngine talks to a pyannote.audio sidecar that keeps the
// diarization pipeline loaded on a fixed device. It is only reached when a
// job requests diarization.
type PyannoteEngine struct {
	cfg        PyannoteEngineConfig
	httpClient *http.Client
}

func NewPyannoteEngine(cfg PyannoteEngineConfig) *PyannoteEngine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:9001"
	}
	if cfg.Device == "" {
		cfg.Device = "cuda"
	}
	return &PyannoteEngine{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Minute,
		},
	}
}

func (e *PyannoteEngine) Name() string { return "pyannote" }

func (e *PyannoteEngine) Diarize(ctx context.Context, audioPath string) ([]RawTurn, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	_ = mw.WriteField("device", e.cfg.Device)

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.cfg.BaseURL+"/diarize", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diarization failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Turns []RawTurn `json:"turns"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return apiResp.Turns, nil
}
