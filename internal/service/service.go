package service

import (
	"context"
	"iter"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
)

// TrainService defines the interface for train registry operations
type TrainService interface {
	AddTrain(ctx context.Context, req *AddTrainRequest) (*entity.Train, error)
	GetTrain(ctx context.Context, number int) (*entity.Train, error)
	ListTrains(ctx context.Context) iter.Seq[entity.Train]
}

// ReservationService books and cancels tickets. BookTicket and CancelTicket
// change the train registry and the booking ledger together or not at all.
type ReservationService interface {
	BookTicket(ctx context.Context, req *BookTicketRequest) (*entity.BookingView, error)
	CancelTicket(ctx context.Context, req *CancelTicketRequest) (*entity.Cancellation, error)
	GetBooking(ctx context.Context, id int64) (*entity.BookingView, error)
	FindActiveBooking(ctx context.Context, passengerName string, passengerAge int) (*entity.BookingView, error)
	ListBookings(ctx context.Context) iter.Seq[entity.BookingView]

	AuditInventory(ctx context.Context) ([]entity.InventoryDiscrepancy, error)
}

// EventPublisher receives reservation events once they have been applied.
type EventPublisher interface {
	Publish(ctx context.Context, event *entity.ReservationEvent) error
}
