package entity

import "time"

type Train struct {
	Number         int       `json:"number"`
	Name           string    `json:"name"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookedSeats returns how many seats are currently taken on the train.
func (t *Train) BookedSeats() int {
	return t.Capacity - t.AvailableSeats
}

// InventoryDiscrepancy describes a train whose seat counter disagrees with
// the number of active bookings recorded against it.
type InventoryDiscrepancy struct {
	TrainNumber    int    `json:"train_number"`
	TrainName      string `json:"train_name"`
	Capacity       int    `json:"capacity"`
	AvailableSeats int    `json:"available_seats"`
	ActiveBookings int    `json:"active_bookings"`
	ExpectedSeats  int    `json:"expected_seats"`
}
