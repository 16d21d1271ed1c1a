package job

import (
	"errors"
	"strings"
)

// Exact messages for the exactly-one-of audio source invariant. These are
// part of the wire contract and must not be reworded.
var (
	ErrNoAudioSource    = errors.New("Must provide either audio or audio_base64")
	ErrBothAudioSources = errors.New("Must provide either audio or audio_base64, not both")
)

// ValidationError reports every schema violation found in a job's input. It
// terminates the job before any resource is acquired.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + strings.Join(e.Errors, "; ")
}

// ErrorBody converts a pipeline failure into the single-key error mapping
// returned to the caller. Schema validation yields the full list of
// violations; every other failure yields its message string.
func ErrorBody(err error) map[string]any {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return map[string]any{"error": verr.Errors}
	}
	return map[string]any{"error": err.Error()}
}
