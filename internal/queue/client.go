package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/voxhub/whisperd/internal/config"
)

type Client struct {
	client  *asynq.Client
	timeout time.Duration
}

func NewClient(cfg config.RedisConfig, jobTimeout time.Duration) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		timeout: jobTimeout,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueTranscription schedules one job. Inference failures are not assumed
// transient, so the task never retries.
func (c *Client) EnqueueTranscription(payload TranscriptionRunPayload) error {
	return c.enqueue(TypeTranscriptionRun, payload, asynq.MaxRetry(0), asynq.Timeout(c.timeout))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
