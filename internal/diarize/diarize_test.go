package diarize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/voxhub/whisperd/internal/audio"
)

type fakeEngine struct {
	turns []RawTurn
	err   error
	paths []string
}

func (f *fakeEngine) Diarize(ctx context.Context, audioPath string) ([]RawTurn, error) {
	f.paths = append(f.paths, audioPath)
	if f.err != nil {
		return nil, f.err
	}
	return f.turns, nil
}

func (f *fakeEngine) Name() string { return "fake" }

func wavFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.wav")
	if err := os.WriteFile(path, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiarizeFirstAppearanceIndexing(t *testing.T) {
	engine := &fakeEngine{turns: []RawTurn{
		{Start: 0, End: 1, Speaker: "SPEAKER_01"},
		{Start: 1, End: 2, Speaker: "SPEAKER_00"},
		{Start: 2, End: 3, Speaker: "SPEAKER_01"},
		{Start: 3, End: 4, Speaker: "SPEAKER_02"},
	}}
	iv := NewInvoker(engine, audio.NewNormalizer("ffmpeg"))

	result, err := iv.Diarize(context.Background(), wavFile(t))
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}

	want := []int{0, 1, 0, 2}
	if len(result.Segments) != len(want) {
		t.Fatalf("segments = %d, want %d", len(result.Segments), len(want))
	}
	for i, turn := range result.Segments {
		if turn.Speaker != want[i] {
			t.Errorf("turn %d speaker = %d, want %d", i, turn.Speaker, want[i])
		}
	}
}

func TestDiarizeKeepsEmissionOrder(t *testing.T) {
	engine := &fakeEngine{turns: []RawTurn{
		{Start: 5, End: 6, Speaker: "B"},
		{Start: 0, End: 1, Speaker: "A"},
	}}
	iv := NewInvoker(engine, audio.NewNormalizer("ffmpeg"))

	result, err := iv.Diarize(context.Background(), wavFile(t))
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}

	if result.Segments[0].Start != 5 || result.Segments[1].Start != 0 {
		t.Fatalf("turns re-sorted: %+v", result.Segments)
	}
}

func TestDiarizeMappingIsPerCall(t *testing.T) {
	engine := &fakeEngine{turns: []RawTurn{{Speaker: "Z"}}}
	iv := NewInvoker(engine, audio.NewNormalizer("ffmpeg"))

	for i := 0; i < 2; i++ {
		result, err := iv.Diarize(context.Background(), wavFile(t))
		if err != nil {
			t.Fatalf("Diarize() error = %v", err)
		}
		if result.Segments[0].Speaker != 0 {
			t.Fatalf("call %d: speaker = %d, want fresh index 0", i, result.Segments[0].Speaker)
		}
	}
}

func TestDiarizeNormalizesDefensively(t *testing.T) {
	engine := &fakeEngine{}
	iv := NewInvoker(engine, audio.NewNormalizer("ffmpeg"))

	// Canonical path should reach the engine unchanged; normalization is a
	// no-op for wav extensions.
	path := wavFile(t)
	if _, err := iv.Diarize(context.Background(), path); err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}
	if len(engine.paths) != 1 || engine.paths[0] != path {
		t.Fatalf("engine paths = %v, want [%s]", engine.paths, path)
	}
}

func TestDiarizeEngineFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("cuda out of memory")}
	iv := NewInvoker(engine, audio.NewNormalizer("ffmpeg"))

	if _, err := iv.Diarize(context.Background(), wavFile(t)); err == nil {
		t.Fatal("Diarize() error = nil, want engine failure")
	}
}
