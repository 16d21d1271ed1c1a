package transcribe

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEngineConfig holds configuration for the hosted Whisper API backend.
type OpenAIEngineConfig struct {
	APIKey string
	Model  string // default: "whisper-1"
}

// OpenAIEngine transcribes through the OpenAI audio API. The hosted API
// accepts only a subset of the decoding options (language, prompt,
// temperature, word timestamps); the remaining fields of Params are bound
// upstream but have no wire representation here and are ignored.
type OpenAIEngine struct {
	cfg    OpenAIEngineConfig
	client *openai.Client
}

func NewOpenAIEngine(cfg OpenAIEngineConfig) *OpenAIEngine {
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	return &OpenAIEngine{
		cfg:    cfg,
		client: openai.NewClient(cfg.APIKey),
	}
}

func (e *OpenAIEngine) Name() string { return "openai-whisper" }

func (e *OpenAIEngine) Transcribe(ctx context.Context, audioPath string, p Params) (*Result, error) {
	req := e.audioRequest(audioPath, p)

	resp, err := e.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	result := &Result{
		Segments: convertSegments(resp),
		Language: resp.Language,
		Device:   "api",
		Model:    e.cfg.Model,
	}

	if p.Translate {
		trResp, err := e.client.CreateTranslation(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("openai translation: %w", err)
		}
		result.TranslationSegments = convertSegments(trResp)
	}

	return result, nil
}

func (e *OpenAIEngine) audioRequest(audioPath string, p Params) openai.AudioRequest {
	req := openai.AudioRequest{
		Model:       e.cfg.Model,
		FilePath:    audioPath,
		Temperature: float32(p.Temperature),
		Format:      openai.AudioResponseFormatVerboseJSON,
	}
	if p.Language != nil {
		req.Language = *p.Language
	}
	if p.InitialPrompt != nil {
		req.Prompt = *p.InitialPrompt
	}
	if p.WordTimestamps {
		req.TimestampGranularities = []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		}
	}
	return req
}

func convertSegments(resp openai.AudioResponse) []Segment {
	segments := make([]Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, Segment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	if len(segments) == 0 && resp.Text != "" {
		segments = append(segments, Segment{End: resp.Duration, Text: resp.Text})
	}
	if len(resp.Words) > 0 && len(segments) > 0 {
		attachWords(segments, resp)
	}
	return segments
}

// attachWords folds the flat word list into the segment whose time span
// contains each word.
func attachWords(segments []Segment, resp openai.AudioResponse) {
	idx := 0
	for _, w := range resp.Words {
		for idx < len(segments)-1 && w.Start >= segments[idx].End {
			idx++
		}
		segments[idx].Words = append(segments[idx].Words, Word{
			Word:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
}
