package diarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestPyannoteEngineParsesTurns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if len(r.MultipartForm.File["file"]) != 1 {
			t.Error("audio file part missing")
		}
		if got := r.MultipartForm.Value["device"]; len(got) != 1 || got[0] != "cpu" {
			t.Errorf("device field = %v, want [cpu]", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"turns": []map[string]any{
				{"start": 0.5, "end": 2.1, "speaker": "SPEAKER_00"},
				{"start": 2.1, "end": 4.0, "speaker": "SPEAKER_01"},
			},
		})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "call.wav")
	if err := os.WriteFile(path, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine := NewPyannoteEngine(PyannoteEngineConfig{BaseURL: srv.URL, Device: "cpu"})
	turns, err := engine.Diarize(context.Background(), path)
	if err != nil {
		t.Fatalf("Diarize() error = %v", err)
	}

	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Speaker != "SPEAKER_00" || turns[0].Start != 0.5 {
		t.Fatalf("first turn = %+v", turns[0])
	}
}

func TestPyannoteEngineServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pipeline load failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "call.wav")
	if err := os.WriteFile(path, []byte("wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine := NewPyannoteEngine(PyannoteEngineConfig{BaseURL: srv.URL})
	if _, err := engine.Diarize(context.Background(), path); err == nil {
		t.Fatal("Diarize() error = nil, want server failure")
	}
}
