package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voxhub/whisperd/internal/models"
)

// ErrNotFound is returned when no document exists for a job ID.
var ErrNotFound = errors.New("job not found")

// ResultStore keeps the retrievable state of each job as a JSON document in
// Redis, expiring after the configured TTL.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func jobKey(id string) string {
	return "job:" + id
}

// Create writes the initial queued document for a freshly submitted job.
func (s *ResultStore) Create(ctx context.Context, id string) error {
	now := time.Now().UTC()
	doc := models.JobDocument{
		ID:        id,
		Status:    models.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.put(ctx, &doc)
}

// SetStatus moves a job to a new status without touching its output.
func (s *ResultStore) SetStatus(ctx context.Context, id, status string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			doc = &models.JobDocument{ID: id, CreatedAt: time.Now().UTC()}
		} else {
			return err
		}
	}
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	return s.put(ctx, doc)
}

// SetOutput records the terminal outcome: the result mapping or the error
// mapping, with the matching status.
func (s *ResultStore) SetOutput(ctx context.Context, id, status string, output any) error {
	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal job output: %w", err)
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			doc = &models.JobDocument{ID: id, CreatedAt: time.Now().UTC()}
		} else {
			return err
		}
	}
	doc.Status = status
	doc.Output = data
	doc.UpdatedAt = time.Now().UTC()
	return s.put(ctx, doc)
}

func (s *ResultStore) Get(ctx context.Context, id string) (*models.JobDocument, error) {
	val, err := s.client.Get(ctx, jobKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	var doc models.JobDocument
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &doc, nil
}

func (s *ResultStore) put(ctx context.Context, doc *models.JobDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal job document: %w", err)
	}
	if err := s.client.Set(ctx, jobKey(doc.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", doc.ID, err)
	}
	return nil
}
