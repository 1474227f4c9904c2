package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID                 int64         `json:"id"`
	Reference          string        `json:"reference"`
	TrainNumber        int           `json:"train_number"`
	PassengerName      string        `json:"passenger_name"`
	PassengerAge       int           `json:"passenger_age"`
	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusActive
}

// BookingView is a booking joined with the name of its train, as shown to callers.
type BookingView struct {
	Booking
	TrainName string `json:"train_name"`
}

// Cancellation is the outcome of a ticket cancellation. SeatRestored is false
// when the booking's train could not be found to give the seat back; the
// booking stays cancelled in that case.
type Cancellation struct {
	Booking      BookingView `json:"booking"`
	SeatRestored bool        `json:"seat_restored"`
	Warning      string      `json:"warning,omitempty"`
}
