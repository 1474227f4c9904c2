package memory

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
)

type trainRepository struct {
	mu     sync.RWMutex
	trains map[int]*entity.Train
	order  []int // train numbers in insertion order
	now    func() time.Time
}

func NewTrainRepository() TrainRepository {
	return &trainRepository{
		trains: make(map[int]*entity.Train),
		now:    time.Now,
	}
}

func (r *trainRepository) Add(ctx context.Context, train *entity.Train) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if train == nil || strings.TrimSpace(train.Name) == "" {
		return fmt.Errorf("%w: train name is required", entity.ErrInvalidInput)
	}
	if train.AvailableSeats < 0 {
		return fmt.Errorf("%w: seats must not be negative, got %d", entity.ErrInvalidInput, train.AvailableSeats)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trains[train.Number]; exists {
		return fmt.Errorf("%w: number %d", entity.ErrDuplicateTrain, train.Number)
	}

	stored := *train
	stored.Capacity = train.AvailableSeats
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}

	r.trains[stored.Number] = &stored
	r.order = append(r.order, stored.Number)

	*train = stored
	return nil
}

func (r *trainRepository) Get(ctx context.Context, number int) (*entity.Train, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	train, ok := r.trains[number]
	if !ok {
		return nil, entity.ErrTrainNotFound
	}
	copied := *train
	return &copied, nil
}

func (r *trainRepository) DecrementSeat(ctx context.Context, number int) (*entity.Train, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	train, ok := r.trains[number]
	if !ok {
		return nil, entity.ErrTrainNotFound
	}
	if train.AvailableSeats == 0 {
		return nil, entity.ErrSeatUnavailable
	}

	train.AvailableSeats--
	copied := *train
	return &copied, nil
}

func (r *trainRepository) IncrementSeat(ctx context.Context, number int) (*entity.Train, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	train, ok := r.trains[number]
	if !ok {
		return nil, entity.ErrTrainNotFound
	}
	if train.AvailableSeats >= train.Capacity {
		return nil, fmt.Errorf("%w: train %d already has all %d seats free",
			entity.ErrInvalidInput, number, train.Capacity)
	}

	train.AvailableSeats++
	copied := *train
	return &copied, nil
}

// List yields copies of the trains in the order they were added. The set of
// trains is captured when iteration starts, so a sequence can be ranged over
// again to observe later additions.
func (r *trainRepository) List(ctx context.Context) iter.Seq[entity.Train] {
	return func(yield func(entity.Train) bool) {
		r.mu.RLock()
		snapshot := make([]entity.Train, 0, len(r.order))
		for _, number := range r.order {
			snapshot = append(snapshot, *r.trains[number])
		}
		r.mu.RUnlock()

		for _, train := range snapshot {
			if ctx.Err() != nil || !yield(train) {
				return
			}
		}
	}
}
