package queue

import "encoding/json"

const (
	TypeTranscriptionRun = "transcription:run"
)

type TranscriptionRunPayload struct {
	JobID string          `json:"job_id"`
	Input json.RawMessage `json:"input"`
}
