package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// sendFunc delivers one encoded task to a backend
type sendFunc func(ctx context.Context, task *Task, payload []byte) error

// prepareTask fills in the ID, data and creation time when missing and validates the result
func prepareTask(task *Task, now func() time.Time) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Data == nil {
		task.Data = make(map[string]interface{})
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now()
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	return nil
}

// publishWithRetry encodes task and hands it to send, retrying failed
// attempts with the delays chosen by retryManager.
func publishWithRetry(ctx context.Context, backend string, task *Task, retryManager *RetryManager, send sendFunc) error {
	for {
		task.Attempts++

		payload, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}

		err = send(ctx, task, payload)
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"backend":  backend,
				"task_id":  task.ID,
				"type":     task.Type,
				"attempts": task.Attempts,
			}).Debug("Task published")
			return nil
		}

		shouldRetry, delay := retryManager.ShouldRetry(task, err)
		if !shouldRetry {
			return fmt.Errorf("failed to publish task %s to %s after %d attempts: %w", task.ID, backend, task.Attempts, err)
		}

		logrus.WithFields(logrus.Fields{
			"backend": backend,
			"task_id": task.ID,
			"attempt": task.Attempts,
			"delay":   delay,
			"error":   err,
		}).Warn("Publish failed, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("publish of task %s interrupted: %w", task.ID, ctx.Err())
		case <-time.After(delay):
		}
	}
}
