package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

func TestRegistryDispatchesRegisteredType(t *testing.T) {
	reg := NewHandlersRegistry()

	called := 0
	reg.Register("transcription:run", asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		called++
		return nil
	}))

	task := asynq.NewTask("transcription:run", []byte(`{}`))
	if err := reg.Mux().ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if called != 1 {
		t.Fatalf("handler called %d times, want 1", called)
	}
}

func TestRegistryPropagatesHandlerError(t *testing.T) {
	reg := NewHandlersRegistry()

	want := errors.New("engine down")
	reg.Register("transcription:run", asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		return want
	}))

	task := asynq.NewTask("transcription:run", []byte(`{}`))
	if err := reg.Mux().ProcessTask(context.Background(), task); !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	reg := NewHandlersRegistry()
	task := asynq.NewTask("no:such:task", nil)
	if err := reg.Mux().ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected error for unregistered task type")
	}
}
