package models

import (
	"encoding/json"
	"time"
)

// Job is one transcription request as handed to the worker: an identifier
// minted at submission plus the raw, not-yet-validated input payload.
type Job struct {
	ID    string          `json:"id"`
	Input json.RawMessage `json:"input"`
}

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// JobDocument is the retrievable state of a job as stored in Redis. Output
// holds either the full result mapping or a single-key error mapping, never
// both shapes at once.
type JobDocument struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Output    json.RawMessage `json:"output,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// JobRecord is the durable history row written to Postgres once a job
// reaches a terminal status.
type JobRecord struct {
	ID         string    `json:"id" db:"id"`
	Status     string    `json:"status" db:"status"`
	Model      string    `json:"model" db:"model"`
	Diarized   bool      `json:"diarized" db:"diarized"`
	DurationMs int64     `json:"duration_ms" db:"duration_ms"`
	Error      *string   `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
