package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Task is the handle of a background sync run.
//
// A task cannot be cancelled through the handle. Its lifetime is bounded
// only by the context given to Start; when that context ends mid-fetch the
// outcome is discarded and the store stays as it was.
type Task struct {
	ID string

	done   chan struct{}
	result Result
	err    error
}

// Done is closed when the run has finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run finishes and returns its outcome
func (t *Task) Wait() (Result, error) {
	<-t.done
	return t.result, t.err
}

// Err returns the run error once Done is closed, nil before that
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Start launches Run in a new goroutine and returns immediately.
// Failures, including panics, are logged with the task id and kept on the
// handle rather than dropped.
func (c *Coordinator) Start(ctx context.Context) *Task {
	t := &Task{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
	logger := c.logger.With("task", t.ID)

	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("sync task panicked: %v", r)
				logger.Error("Menu sync task failed", "error", t.err)
			}
		}()

		logger.Debug("Menu sync task started")
		t.result, t.err = c.Run(ctx)
		if t.err != nil {
			logger.Error("Menu sync task failed", "error", t.err)
			return
		}
		logger.Debug("Menu sync task finished", "fetched", t.result.Fetched, "records", t.result.Records)
	}()

	return t
}
