package transcribe

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
	"strconv"
	"time"
)

// LocalEngineConfig holds configuration for the faster-whisper server
// backend.
type LocalEngineConfig struct {
	BaseURL string // default: "http://localhost:9000"
}

// LocalEngine talks to a faster-whisper HTTP server that keeps the models
// loaded for the lifetime of its process. One instance is shared by all jobs
// in a worker; it holds no per-job state.
type LocalEngine struct {
	cfg        LocalEngineConfig
	httpClient *http.Client
}

func NewLocalEngine(cfg LocalEngineConfig) *LocalEngine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:9000"
	}
	return &LocalEngine{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Minute,
		},
	}
}

func (e *LocalEngine) Name() string { return "faster-whisper" }

// Transcribe uploads the audio with every decoding option bound by name.
func (e *LocalEngine) Transcribe(ctx context.Context, audioPath string, p Params) (*Result, error) {
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

	for name, value := range paramFields(p) {
		_ = mw.WriteField(name, value)
	}

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.cfg.BaseURL+"/transcribe", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Segments            []Segment `json:"segments"`
		TranslationSegments []Segment `json:"translation_segments"`
		DetectedLanguage    string    `json:"detected_language"`
		Device              string    `json:"device"`
		Model               string    `json:"model"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &Result{
		Segments:            apiResp.Segments,
		TranslationSegments: apiResp.TranslationSegments,
		Language:            apiResp.DetectedLanguage,
		Device:              apiResp.Device,
		Model:               apiResp.Model,
	}, nil
}

// paramFields flattens Params to the server's form-field names. Nil-able
// options are sent as empty strings so the field set is identical for every
// call.
func paramFields(p Params) map[string]string {
	language := ""
	if p.Language != nil {
		language = *p.Language
	}
	initialPrompt := ""
	if p.InitialPrompt != nil {
		initialPrompt = *p.InitialPrompt
	}

	return map[string]string{
		"model":                             p.Model,
		"transcription":                     p.Transcription,
		"translate":                         strconv.FormatBool(p.Translate),
		"translation":                       p.Translation,
		"language":                          language,
		"temperature":                       formatFloat(p.Temperature),
		"best_of":                           strconv.Itoa(p.BestOf),
		"beam_size":                         strconv.Itoa(p.BeamSize),
		"patience":                          formatFloat(p.Patience),
		"length_penalty":                    formatFloat(p.LengthPenalty),
		"suppress_tokens":                   p.SuppressTokens,
		"initial_prompt":                    initialPrompt,
		"condition_on_previous_text":        strconv.FormatBool(p.ConditionOnPreviousText),
		"temperature_increment_on_fallback": formatFloat(p.TemperatureIncrementOnFallback),
		"compression_ratio_threshold":       formatFloat(p.CompressionRatioThreshold),
		"logprob_threshold":                 formatFloat(p.LogprobThreshold),
		"no_speech_threshold":               formatFloat(p.NoSpeechThreshold),
		"enable_vad":                        strconv.FormatBool(p.EnableVAD),
		"word_timestamps":                   strconv.FormatBool(p.WordTimestamps),
		"repetition_penalty":                formatFloat(p.RepetitionPenalty),
		"no_repeat_ngram_size":              strconv.Itoa(p.NoRepeatNgramSize),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
