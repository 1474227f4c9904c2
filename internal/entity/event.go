package entity

import "time"

type ReservationEventType string

const (
	EventBookingCreated   ReservationEventType = "booking_created"
	EventBookingCancelled ReservationEventType = "booking_cancelled"
)

// ReservationEvent is emitted after a booking or a cancellation has been applied.
type ReservationEvent struct {
	Type           ReservationEventType `json:"type"`
	BookingID      int64                `json:"booking_id"`
	Reference      string               `json:"reference"`
	TrainNumber    int                  `json:"train_number"`
	PassengerName  string               `json:"passenger_name"`
	PassengerAge   int                  `json:"passenger_age"`
	Reason         string               `json:"reason,omitempty"`
	AvailableSeats int                  `json:"available_seats"`
	OccurredAt     time.Time            `json:"occurred_at"`
}
