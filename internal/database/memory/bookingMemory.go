package memory

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/google/uuid"
)

type passengerKey struct {
	name string
	age  int
}

type bookingRepository struct {
	mu       sync.RWMutex
	bookings map[int64]*entity.Booking
	order    []int64
	// secondary index: passenger identity -> booking IDs in creation order
	byIdentity map[passengerKey][]int64
	lastID     int64
	now        func() time.Time
}

func NewBookingRepository() BookingRepository {
	return &bookingRepository{
		bookings:   make(map[int64]*entity.Booking),
		byIdentity: make(map[passengerKey][]int64),
		now:        time.Now,
	}
}

func (r *bookingRepository) Create(ctx context.Context, trainNumber int, passengerName string, passengerAge int) (*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(passengerName) == "" {
		return nil, fmt.Errorf("%w: passenger name is required", entity.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	booking := &entity.Booking{
		ID:            r.lastID,
		Reference:     uuid.NewString(),
		TrainNumber:   trainNumber,
		PassengerName: passengerName,
		PassengerAge:  passengerAge,
		Status:        entity.BookingStatusActive,
		CreatedAt:     r.now(),
	}

	r.bookings[booking.ID] = booking
	r.order = append(r.order, booking.ID)
	key := passengerKey{name: passengerName, age: passengerAge}
	r.byIdentity[key] = append(r.byIdentity[key], booking.ID)

	copied := *booking
	return &copied, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	return cloneBooking(booking), nil
}

// FindActiveByIdentity returns the earliest active booking made under the
// given name and age. It reports ErrAlreadyCancelled when the passenger has
// bookings but all of them are cancelled.
func (r *bookingRepository) FindActiveByIdentity(ctx context.Context, passengerName string, passengerAge int) (*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byIdentity[passengerKey{name: passengerName, age: passengerAge}]
	if len(ids) == 0 {
		return nil, entity.ErrBookingNotFound
	}
	for _, id := range ids {
		if booking := r.bookings[id]; booking.IsActive() {
			return cloneBooking(booking), nil
		}
	}
	return nil, entity.ErrAlreadyCancelled
}

func (r *bookingRepository) Cancel(ctx context.Context, id int64, reason string) (*entity.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, entity.ErrBookingNotFound
	}
	if !booking.IsActive() {
		return nil, entity.ErrAlreadyCancelled
	}

	cancelledAt := r.now()
	booking.Status = entity.BookingStatusCancelled
	booking.CancellationReason = reason
	booking.CancelledAt = &cancelledAt

	return cloneBooking(booking), nil
}

// List yields copies of every booking, active and cancelled, in creation order.
func (r *bookingRepository) List(ctx context.Context) iter.Seq[entity.Booking] {
	return func(yield func(entity.Booking) bool) {
		r.mu.RLock()
		snapshot := make([]entity.Booking, 0, len(r.order))
		for _, id := range r.order {
			snapshot = append(snapshot, *cloneBooking(r.bookings[id]))
		}
		r.mu.RUnlock()

		for _, booking := range snapshot {
			if ctx.Err() != nil || !yield(booking) {
				return
			}
		}
	}
}

func (r *bookingRepository) CountActiveByTrain(ctx context.Context) map[int]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[int]int)
	for _, booking := range r.bookings {
		if booking.IsActive() {
			counts[booking.TrainNumber]++
		}
	}
	return counts
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	copied := *b
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		copied.CancelledAt = &at
	}
	return &copied
}
