package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/voxhub/whisperd/internal/job"
	"github.com/voxhub/whisperd/internal/models"
	"github.com/voxhub/whisperd/internal/queue"
	"github.com/voxhub/whisperd/internal/store"
)

// TranscriptionWorker runs one transcription job per task. A job that fails
// validation or inference is still a handled task: its error mapping becomes
// the job output and the task is not retried.
type TranscriptionWorker struct {
	orchestrator *job.Orchestrator
	results      *store.ResultStore
	history      *store.HistoryStore // nil when no database is configured
}

func NewTranscriptionWorker(orc *job.Orchestrator, results *store.ResultStore, history *store.HistoryStore) *TranscriptionWorker {
	return &TranscriptionWorker{
		orchestrator: orc,
		results:      results,
		history:      history,
	}
}

func (w *TranscriptionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranscriptionRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	j := &models.Job{ID: payload.JobID, Input: payload.Input}
	slog.Info("running transcription job", "job_id", j.ID)

	if err := w.results.SetStatus(ctx, j.ID, models.JobStatusRunning); err != nil {
		slog.Warn("failed to mark job running", "job_id", j.ID, "error", err)
	}

	start := time.Now()
	result, runErr := w.orchestrator.Run(ctx, j)
	elapsed := time.Since(start)

	var output any
	status := models.JobStatusCompleted
	if runErr != nil {
		output = job.ErrorBody(runErr)
		status = models.JobStatusFailed
		slog.Error("transcription job failed", "job_id", j.ID, "error", runErr, "duration", elapsed)
	} else {
		output = result
		slog.Info("transcription job completed", "job_id", j.ID, "segments", len(result.Segments), "duration", elapsed)
	}

	if err := w.results.SetOutput(ctx, j.ID, status, output); err != nil {
		return fmt.Errorf("store job output: %w", err)
	}

	w.record(ctx, j.ID, status, result, runErr, elapsed)
	return nil
}

func (w *TranscriptionWorker) record(ctx context.Context, id, status string, result *job.Result, runErr error, elapsed time.Duration) {
	if w.history == nil {
		return
	}

	rec := models.JobRecord{
		ID:         id,
		Status:     status,
		DurationMs: elapsed.Milliseconds(),
	}
	if result != nil {
		rec.Model = result.Model
		rec.Diarized = result.Diarization != nil
	}
	if runErr != nil {
		msg := runErr.Error()
		rec.Error = &msg
	}

	if err := w.history.Insert(ctx, rec); err != nil {
		slog.Warn("failed to record job history", "job_id", id, "error", err)
	}
}
