package diarize

import (
	"context"
	"fmt"

	"github.com/voxhub/whisperd/internal/audio"
)

// RawTurn is one speaker turn as emitted by the engine, carrying the
// engine's own speaker label.
type RawTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Engine is the opaque diarization collaborator.
type Engine interface {
	Diarize(ctx context.Context, audioPath string) ([]RawTurn, error)
	Name() string
}

// Turn is a speaker turn with the job-stable integer index in place of the
// engine's raw label.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker int     `json:"speaker"`
}

type Result struct {
	Segments []Turn `json:"segments"`
}

// Invoker wraps an Engine with the orchestration-side concerns: defensive
// normalization of the input path and remapping of raw speaker labels to
// first-appearance indices.
type Invoker struct {
	engine Engine
	norm   *audio.Normalizer
}

func NewInvoker(engine Engine, norm *audio.Normalizer) *Invoker {
	return &Invoker{engine: engine, norm: norm}
}

// Diarize runs the engine on canonical-format audio. The path may already be
// normalized depending on call order, so normalization is applied again; it
// is a no-op for files with the canonical extension.
func (iv *Invoker) Diarize(ctx context.Context, path string) (*Result, error) {
	path, err := iv.norm.Normalize(ctx, path)
	if err != nil {
		return nil, err
	}

	raw, err := iv.engine.Diarize(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("diarization: %w", err)
	}

	// Raw labels become zero-based indices in first-appearance order. The
	// mapping lives for exactly one call, and turns keep the engine's
	// emission order.
	indices := make(map[string]int)
	turns := make([]Turn, 0, len(raw))
	for _, t := range raw {
		idx, ok := indices[t.Speaker]
		if !ok {
			idx = len(indices)
			indices[t.Speaker] = idx
		}
		turns = append(turns, Turn{Start: t.Start, End: t.End, Speaker: idx})
	}

	return &Result{Segments: turns}, nil
}
