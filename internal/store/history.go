package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxhub/whisperd/internal/models"
)

// HistoryStore writes a durable row per finished job. Redis documents
// expire; these do not.
type HistoryStore struct {
	db *pgxpool.Pool
}

func NewHistoryStore(db *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Insert(ctx context.Context, rec models.JobRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO transcription_jobs (id, status, model, diarized, duration_ms, error)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET status = $2, duration_ms = $5, error = $6`,
		rec.ID, rec.Status, rec.Model, rec.Diarized, rec.DurationMs, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert job record: %w", err)
	}
	return nil
}

func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]models.JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, status, model, diarized, duration_ms, error, created_at
		 FROM transcription_jobs ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query job records: %w", err)
	}
	defer rows.Close()

	var records []models.JobRecord
	for rows.Next() {
		var r models.JobRecord
		if err := rows.Scan(&r.ID, &r.Status, &r.Model, &r.Diarized, &r.DurationMs, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}
