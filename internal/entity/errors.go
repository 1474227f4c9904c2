package entity

import "errors"

var (
	// Train errors
	ErrTrainNotFound   = errors.New("train not found")
	ErrDuplicateTrain  = errors.New("train already exists")
	ErrSeatUnavailable = errors.New("seat not available")

	// Booking errors
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
