package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	repository "github.com/ds124wfegd/railway-reservation/internal/database/memory"
	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/sirupsen/logrus"
)

// BookTicketRequest represents the data needed to book one seat
type BookTicketRequest struct {
	TrainNumber   int    `json:"train_number" binding:"required"`
	PassengerName string `json:"passenger_name" binding:"required,min=1,max=100"`
	PassengerAge  int    `json:"passenger_age" binding:"min=0,max=150"`
}

// CancelTicketRequest identifies the booking to cancel. When BookingID is
// set it wins; otherwise the earliest active booking for PassengerName and
// PassengerAge is cancelled, matching how tickets were looked up before
// bookings had IDs.
type CancelTicketRequest struct {
	BookingID     int64  `json:"booking_id"`
	PassengerName string `json:"passenger_name"`
	PassengerAge  int    `json:"passenger_age"`
	Reason        string `json:"reason" binding:"required,min=1,max=500"`
}

type reservationService struct {
	// mu makes every book and cancel a single step across both repositories
	mu          sync.Mutex
	trainRepo   repository.TrainRepository
	bookingRepo repository.BookingRepository
	publisher   EventPublisher
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewReservationService creates a new instance of ReservationService.
// publisher may be nil, in which case no events are emitted.
func NewReservationService(
	trainRepo repository.TrainRepository,
	bookingRepo repository.BookingRepository,
	publisher EventPublisher,
	log logrus.FieldLogger,
) ReservationService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &reservationService{
		trainRepo:   trainRepo,
		bookingRepo: bookingRepo,
		publisher:   publisher,
		log:         log,
		now:         time.Now,
	}
}

func (s *reservationService) BookTicket(ctx context.Context, req *BookTicketRequest) (*entity.BookingView, error) {
	if req == nil || strings.TrimSpace(req.PassengerName) == "" {
		return nil, fmt.Errorf("%w: passenger name is required", entity.ErrInvalidInput)
	}
	if req.PassengerAge < 0 {
		return nil, fmt.Errorf("%w: passenger age must not be negative", entity.ErrInvalidInput)
	}

	s.mu.Lock()
	view, seatsLeft, err := s.book(ctx, req)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":      view.ID,
		"train_number":    view.TrainNumber,
		"passenger":       view.PassengerName,
		"available_seats": seatsLeft,
	}).Info("Ticket booked")

	s.publish(ctx, &entity.ReservationEvent{
		Type:           entity.EventBookingCreated,
		BookingID:      view.ID,
		Reference:      view.Reference,
		TrainNumber:    view.TrainNumber,
		PassengerName:  view.PassengerName,
		PassengerAge:   view.PassengerAge,
		AvailableSeats: seatsLeft,
		OccurredAt:     s.now(),
	})

	return view, nil
}

// book must be called with s.mu held.
func (s *reservationService) book(ctx context.Context, req *BookTicketRequest) (*entity.BookingView, int, error) {
	train, err := s.trainRepo.Get(ctx, req.TrainNumber)
	if err != nil {
		return nil, 0, fmt.Errorf("train %d: %w", req.TrainNumber, err)
	}
	if train.AvailableSeats == 0 {
		return nil, 0, fmt.Errorf("train %d (%s): %w", train.Number, train.Name, entity.ErrSeatUnavailable)
	}

	train, err = s.trainRepo.DecrementSeat(ctx, req.TrainNumber)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reserve seat on train %d: %w", req.TrainNumber, err)
	}

	booking, err := s.bookingRepo.Create(ctx, req.TrainNumber, req.PassengerName, req.PassengerAge)
	if err != nil {
		// give the seat back so a failed booking leaves no trace
		if _, rbErr := s.trainRepo.IncrementSeat(context.WithoutCancel(ctx), req.TrainNumber); rbErr != nil {
			s.log.WithFields(logrus.Fields{
				"train_number": req.TrainNumber,
				"error":        rbErr,
			}).Error("Failed to release seat after booking error")
		}
		return nil, 0, fmt.Errorf("failed to create booking: %w", err)
	}

	return &entity.BookingView{Booking: *booking, TrainName: train.Name}, train.AvailableSeats, nil
}

func (s *reservationService) CancelTicket(ctx context.Context, req *CancelTicketRequest) (*entity.Cancellation, error) {
	if req == nil || strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", entity.ErrInvalidInput)
	}
	if req.BookingID == 0 && strings.TrimSpace(req.PassengerName) == "" {
		return nil, fmt.Errorf("%w: booking id or passenger name is required", entity.ErrInvalidInput)
	}

	s.mu.Lock()
	cancellation, seatsLeft, err := s.cancel(ctx, req)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{
		"booking_id":   cancellation.Booking.ID,
		"train_number": cancellation.Booking.TrainNumber,
		"reason":       cancellation.Booking.CancellationReason,
	})
	if cancellation.SeatRestored {
		entry.WithField("available_seats", seatsLeft).Info("Ticket cancelled")
	} else {
		entry.WithField("warning", cancellation.Warning).Warn("Ticket cancelled without restoring the seat")
	}

	s.publish(ctx, &entity.ReservationEvent{
		Type:           entity.EventBookingCancelled,
		BookingID:      cancellation.Booking.ID,
		Reference:      cancellation.Booking.Reference,
		TrainNumber:    cancellation.Booking.TrainNumber,
		PassengerName:  cancellation.Booking.PassengerName,
		PassengerAge:   cancellation.Booking.PassengerAge,
		Reason:         cancellation.Booking.CancellationReason,
		AvailableSeats: seatsLeft,
		OccurredAt:     s.now(),
	})

	return cancellation, nil
}

// cancel must be called with s.mu held.
func (s *reservationService) cancel(ctx context.Context, req *CancelTicketRequest) (*entity.Cancellation, int, error) {
	var (
		booking *entity.Booking
		err     error
	)
	if req.BookingID != 0 {
		booking, err = s.bookingRepo.GetByID(ctx, req.BookingID)
	} else {
		booking, err = s.bookingRepo.FindActiveByIdentity(ctx, req.PassengerName, req.PassengerAge)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find booking: %w", err)
	}

	bookingID := booking.ID
	booking, err = s.bookingRepo.Cancel(ctx, bookingID, req.Reason)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to cancel booking %d: %w", bookingID, err)
	}

	// The cancellation stands even if the seat cannot be given back.
	result := &entity.Cancellation{Booking: entity.BookingView{Booking: *booking}}
	train, err := s.trainRepo.IncrementSeat(context.WithoutCancel(ctx), booking.TrainNumber)
	if err != nil {
		result.Warning = fmt.Sprintf("seat not restored on train %d: %v", booking.TrainNumber, err)
		return result, 0, nil
	}

	result.SeatRestored = true
	result.Booking.TrainName = train.Name
	return result, train.AvailableSeats, nil
}

func (s *reservationService) GetBooking(ctx context.Context, id int64) (*entity.BookingView, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	view := s.toView(ctx, *booking)
	return &view, nil
}

// FindActiveBooking returns the booking CancelTicket would pick for the given
// passenger, without changing anything.
func (s *reservationService) FindActiveBooking(ctx context.Context, passengerName string, passengerAge int) (*entity.BookingView, error) {
	booking, err := s.bookingRepo.FindActiveByIdentity(ctx, passengerName, passengerAge)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	view := s.toView(ctx, *booking)
	return &view, nil
}

func (s *reservationService) ListBookings(ctx context.Context) iter.Seq[entity.BookingView] {
	return func(yield func(entity.BookingView) bool) {
		for booking := range s.bookingRepo.List(ctx) {
			if !yield(s.toView(ctx, booking)) {
				return
			}
		}
	}
}

func (s *reservationService) toView(ctx context.Context, booking entity.Booking) entity.BookingView {
	view := entity.BookingView{Booking: booking}
	if train, err := s.trainRepo.Get(ctx, booking.TrainNumber); err == nil {
		view.TrainName = train.Name
	}
	return view
}

// AuditInventory compares every train's free seats with its capacity minus
// the active bookings held against it.
func (s *reservationService) AuditInventory(ctx context.Context) ([]entity.InventoryDiscrepancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.bookingRepo.CountActiveByTrain(ctx)
	discrepancies := make([]entity.InventoryDiscrepancy, 0)

	for train := range s.trainRepo.List(ctx) {
		expected := train.Capacity - active[train.Number]
		if expected == train.AvailableSeats {
			continue
		}
		discrepancies = append(discrepancies, entity.InventoryDiscrepancy{
			TrainNumber:    train.Number,
			TrainName:      train.Name,
			Capacity:       train.Capacity,
			AvailableSeats: train.AvailableSeats,
			ActiveBookings: active[train.Number],
			ExpectedSeats:  expected,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("inventory audit interrupted: %w", err)
	}
	return discrepancies, nil
}

func (s *reservationService) publish(ctx context.Context, event *entity.ReservationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"event":      event.Type,
			"booking_id": event.BookingID,
			"error":      err,
		}).Error("Failed to publish reservation event")
	}
}

// IsClientError reports whether err was caused by the caller rather than by
// the service itself.
func IsClientError(err error) bool {
	for _, target := range []error{
		entity.ErrTrainNotFound,
		entity.ErrSeatUnavailable,
		entity.ErrBookingNotFound,
		entity.ErrAlreadyCancelled,
		entity.ErrDuplicateTrain,
		entity.ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
