package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxhub/whisperd/internal/models"
	"github.com/voxhub/whisperd/internal/queue"
	"github.com/voxhub/whisperd/internal/store"
)

// Enqueuer schedules a transcription job on the queue.
type Enqueuer interface {
	EnqueueTranscription(payload queue.TranscriptionRunPayload) error
}

// JobStore is the slice of the result store the handler needs.
type JobStore interface {
	Create(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.JobDocument, error)
}

type JobsHandler struct {
	queue   Enqueuer
	results JobStore
}

func NewJobsHandler(q Enqueuer, results JobStore) *JobsHandler {
	return &JobsHandler{queue: q, results: results}
}

type submitRequest struct {
	Input json.RawMessage `json:"input"`
}

// Submit accepts a job payload, mints its ID and enqueues it. Input
// validation happens in the worker, so a submission is accepted as long as
// it is well-formed JSON with an input object.
func (h *JobsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Input) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input required"})
		return
	}

	id := uuid.NewString()

	if err := h.results.Create(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register job"})
		return
	}

	if err := h.queue.EnqueueTranscription(queue.TranscriptionRunPayload{JobID: id, Input: req.Input}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to enqueue job"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": models.JobStatusQueued})
}

// Get returns the current job document: status while in flight, the result
// or error mapping once terminal.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.results.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load job"})
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
