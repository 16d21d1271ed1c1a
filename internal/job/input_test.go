package job

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseInputAppliesDefaults(t *testing.T) {
	in, err := ParseInput(json.RawMessage(`{"audio": "https://example.com/a.wav"}`))
	if err != nil {
		t.Fatalf("ParseInput() error = %v", err)
	}

	if in.Model != "base" {
		t.Errorf("Model = %q, want base", in.Model)
	}
	if in.Transcription != "plain_text" {
		t.Errorf("Transcription = %q, want plain_text", in.Transcription)
	}
	if in.BestOf != 5 || in.BeamSize != 5 {
		t.Errorf("BestOf/BeamSize = %d/%d, want 5/5", in.BestOf, in.BeamSize)
	}
	if in.SuppressTokens != "-1" {
		t.Errorf("SuppressTokens = %q, want -1", in.SuppressTokens)
	}
	if in.TemperatureIncrementOnFallback != 0.2 {
		t.Errorf("TemperatureIncrementOnFallback = %v, want 0.2", in.TemperatureIncrementOnFallback)
	}
	if in.CompressionRatioThreshold != 2.4 {
		t.Errorf("CompressionRatioThreshold = %v, want 2.4", in.CompressionRatioThreshold)
	}
	if in.LogprobThreshold != -1 {
		t.Errorf("LogprobThreshold = %v, want -1", in.LogprobThreshold)
	}
	if in.NoSpeechThreshold != 0.6 {
		t.Errorf("NoSpeechThreshold = %v, want 0.6", in.NoSpeechThreshold)
	}
	if in.Language != nil || in.InitialPrompt != nil {
		t.Errorf("Language/InitialPrompt should default to nil")
	}
	if in.Translate || in.Diarize || in.EnableVAD || in.WordTimestamps {
		t.Errorf("boolean flags should default to false")
	}
}

func TestParseInputOverridesDefaults(t *testing.T) {
	in, err := ParseInput(json.RawMessage(`{
		"audio_base64": "aGk=",
		"model": "large-v3",
		"transcription": "srt",
		"beam_size": 10,
		"language": "en",
		"diarize": true
	}`))
	if err != nil {
		t.Fatalf("ParseInput() error = %v", err)
	}

	if in.Model != "large-v3" {
		t.Errorf("Model = %q, want large-v3", in.Model)
	}
	if in.Transcription != "srt" {
		t.Errorf("Transcription = %q, want srt", in.Transcription)
	}
	if in.BeamSize != 10 {
		t.Errorf("BeamSize = %d, want 10", in.BeamSize)
	}
	if in.Language == nil || *in.Language != "en" {
		t.Errorf("Language = %v, want en", in.Language)
	}
	if !in.Diarize {
		t.Error("Diarize = false, want true")
	}
}

func TestParseInputRejectsUnknownKeys(t *testing.T) {
	_, err := ParseInput(json.RawMessage(`{"audio": "https://example.com/a.wav", "speed": 2}`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	want := "Unexpected input. speed is not a valid input option"
	if len(verr.Errors) != 1 || verr.Errors[0] != want {
		t.Fatalf("Errors = %v, want [%q]", verr.Errors, want)
	}
}

func TestParseInputRejectsBadEnumAndRange(t *testing.T) {
	_, err := ParseInput(json.RawMessage(`{
		"audio": "https://example.com/a.wav",
		"model": "gigantic",
		"no_speech_threshold": 1.5,
		"best_of": 0
	}`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Fatalf("Errors = %v, want 3 entries", verr.Errors)
	}

	joined := strings.Join(verr.Errors, "\n")
	for _, field := range []string{"model", "no_speech_threshold", "best_of"} {
		if !strings.Contains(joined, field) {
			t.Errorf("errors missing %q: %v", field, verr.Errors)
		}
	}
}

func TestParseInputRejectsWrongTypes(t *testing.T) {
	_, err := ParseInput(json.RawMessage(`{"audio": "https://example.com/a.wav", "beam_size": "five"}`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Errors) == 0 || !strings.Contains(verr.Errors[0], "beam_size") {
		t.Fatalf("Errors = %v, want a beam_size type error", verr.Errors)
	}
}

func TestParseInputRejectsNonObject(t *testing.T) {
	_, err := ParseInput(json.RawMessage(`"just a string"`))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

func TestErrorBodyShapes(t *testing.T) {
	verr := &ValidationError{Errors: []string{"model is invalid", "beam_size must be at least 1"}}
	body := ErrorBody(verr)
	list, ok := body["error"].([]string)
	if !ok || len(list) != 2 {
		t.Fatalf("ErrorBody(validation) = %v, want the error list", body)
	}

	body = ErrorBody(ErrBothAudioSources)
	msg, ok := body["error"].(string)
	if !ok || msg != "Must provide either audio or audio_base64, not both" {
		t.Fatalf("ErrorBody(both sources) = %v", body)
	}
	if len(body) != 1 {
		t.Fatalf("error mapping has extra keys: %v", body)
	}
}
