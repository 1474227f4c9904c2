// Package memory keeps the train registry and the booking ledger in process
// memory. Nothing is persisted; a fresh process starts with both empty.
package memory

import (
	"context"
	"iter"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
)

type TrainRepository interface {
	Add(ctx context.Context, train *entity.Train) error
	Get(ctx context.Context, number int) (*entity.Train, error)

	// Seat counter operations
	DecrementSeat(ctx context.Context, number int) (*entity.Train, error)
	IncrementSeat(ctx context.Context, number int) (*entity.Train, error)

	List(ctx context.Context) iter.Seq[entity.Train]
}

type BookingRepository interface {
	Create(ctx context.Context, trainNumber int, passengerName string, passengerAge int) (*entity.Booking, error)
	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	FindActiveByIdentity(ctx context.Context, passengerName string, passengerAge int) (*entity.Booking, error)
	Cancel(ctx context.Context, id int64, reason string) (*entity.Booking, error)

	// Query operations
	List(ctx context.Context) iter.Seq[entity.Booking]
	CountActiveByTrain(ctx context.Context) map[int]int
}
