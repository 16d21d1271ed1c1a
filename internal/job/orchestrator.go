package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/voxhub/whisperd/internal/audio"
	"github.com/voxhub/whisperd/internal/diarize"
	"github.com/voxhub/whisperd/internal/models"
	"github.com/voxhub/whisperd/internal/transcribe"
)

// Diarizer produces speaker-indexed turns for canonical-format audio.
type Diarizer interface {
	Diarize(ctx context.Context, path string) (*diarize.Result, error)
}

// Result is the full response document for a successful job. Diarization is
// present only when the job asked for it.
type Result struct {
	Segments         []transcribe.Segment `json:"segments"`
	DetectedLanguage string               `json:"detected_language"`
	Transcription    string               `json:"transcription"`
	Translation      *string              `json:"translation,omitempty"`
	Device           string               `json:"device"`
	Model            string               `json:"model"`
	Diarization      *diarize.Result      `json:"diarization,omitempty"`
}

// Orchestrator runs one job start to finish: validate, acquire, normalize,
// transcribe, optionally diarize, clean up. The engines it holds are
// process-wide and shared across jobs; everything else it touches is
// job-local.
type Orchestrator struct {
	acquirer   *audio.Acquirer
	normalizer *audio.Normalizer
	engine     transcribe.Engine
	diarizer   Diarizer
	tempDir    string
}

func NewOrchestrator(acquirer *audio.Acquirer, normalizer *audio.Normalizer, engine transcribe.Engine, diarizer Diarizer, tempDir string) *Orchestrator {
	return &Orchestrator{
		acquirer:   acquirer,
		normalizer: normalizer,
		engine:     engine,
		diarizer:   diarizer,
		tempDir:    tempDir,
	}
}

// Run handles one job synchronously. Any returned error is terminal for the
// job; by the time Run returns, every temporary file the job acquired has
// been released exactly once, on success and failure paths alike.
func (o *Orchestrator) Run(ctx context.Context, j *models.Job) (*Result, error) {
	in, err := ParseInput(j.Input)
	if err != nil {
		return nil, err
	}

	if in.Audio == "" && in.AudioBase64 == "" {
		return nil, ErrNoAudioSource
	}
	if in.Audio != "" && in.AudioBase64 != "" {
		return nil, ErrBothAudioSources
	}

	dir, err := os.MkdirTemp(o.tempDir, "job-"+j.ID+"-")
	if err != nil {
		return nil, fmt.Errorf("create job temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("job cleanup failed", "job_id", j.ID, "dir", dir, "error", err)
		}
	}()

	path, err := o.acquirer.Acquire(ctx, dir, in.Source())
	if err != nil {
		return nil, fmt.Errorf("acquire audio: %w", err)
	}

	path, err = o.normalizer.Normalize(ctx, path)
	if err != nil {
		return nil, err
	}

	engineResult, err := o.engine.Transcribe(ctx, path, in.Params())
	if err != nil {
		return nil, fmt.Errorf("transcription engine: %w", err)
	}

	result := buildResult(in, engineResult)

	if in.Diarize {
		d, err := o.diarizer.Diarize(ctx, path)
		if err != nil {
			return nil, err
		}
		result.Diarization = d
	}

	return result, nil
}

func buildResult(in *Input, er *transcribe.Result) *Result {
	result := &Result{
		Segments:         er.Segments,
		DetectedLanguage: er.Language,
		Transcription:    transcribe.Render(in.Transcription, er.Segments),
		Device:           er.Device,
		Model:            er.Model,
	}
	if result.Model == "" {
		result.Model = in.Model
	}
	if in.Translate && er.TranslationSegments != nil {
		t := transcribe.Render(in.Translation, er.TranslationSegments)
		result.Translation = &t
	}
	return result
}
