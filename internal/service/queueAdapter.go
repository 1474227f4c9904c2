package service

import (
	"context"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/ds124wfegd/railway-reservation/pkg/queue"
)

// QueueAdapter adapts queue.Queue to the EventPublisher interface
type QueueAdapter struct {
	queue      queue.Queue
	maxRetries int
}

// NewQueueAdapter creates a new adapter for the queue
func NewQueueAdapter(q queue.Queue, maxRetries int) *QueueAdapter {
	return &QueueAdapter{queue: q, maxRetries: maxRetries}
}

// Publish converts a reservation event into a queue task
func (a *QueueAdapter) Publish(ctx context.Context, event *entity.ReservationEvent) error {
	if a.queue == nil || event == nil {
		return nil
	}

	data := map[string]interface{}{
		"booking_id":      event.BookingID,
		"reference":       event.Reference,
		"train_number":    event.TrainNumber,
		"passenger_name":  event.PassengerName,
		"passenger_age":   event.PassengerAge,
		"available_seats": event.AvailableSeats,
		"occurred_at":     event.OccurredAt,
	}
	if event.Reason != "" {
		data["reason"] = event.Reason
	}

	task := &queue.Task{
		Type:       taskTypeFor(event.Type),
		Data:       data,
		CreatedAt:  event.OccurredAt,
		MaxRetries: a.maxRetries,
	}

	return a.queue.Publish(ctx, task)
}

func taskTypeFor(t entity.ReservationEventType) queue.TaskType {
	switch t {
	case entity.EventBookingCancelled:
		return queue.TaskTypeBookingCancelled
	case entity.EventBookingCreated:
		return queue.TaskTypeBookingCreated
	default:
		return queue.TaskType(t)
	}
}
