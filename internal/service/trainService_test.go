package service

import (
	"context"
	"slices"
	"testing"

	repository "github.com/ds124wfegd/railway-reservation/internal/database/memory"
	"github.com/ds124wfegd/railway-reservation/internal/entity"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainServiceAddTrain(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	svc := NewTrainService(repository.NewTrainRepository(), logger)
	ctx := context.Background()

	train, err := svc.AddTrain(ctx, &AddTrainRequest{Number: 100, Name: "Express", Seats: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, train.Capacity)
	assert.Equal(t, 2, train.AvailableSeats)
	assert.False(t, train.CreatedAt.IsZero())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Train added", entry.Message)
	assert.Equal(t, 100, entry.Data["train_number"])

	tests := []struct {
		name    string
		req     *AddTrainRequest
		wantErr error
	}{
		{name: "duplicate number", req: &AddTrainRequest{Number: 100, Name: "Other", Seats: 1}, wantErr: entity.ErrDuplicateTrain},
		{name: "negative seats", req: &AddTrainRequest{Number: 101, Name: "Broken", Seats: -3}, wantErr: entity.ErrInvalidInput},
		{name: "empty name", req: &AddTrainRequest{Number: 102, Seats: 1}, wantErr: entity.ErrInvalidInput},
		{name: "nil request", req: nil, wantErr: entity.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTrain(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := svc.GetTrain(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Express", stored.Name)
}

func TestTrainServiceListKeepsInsertionOrder(t *testing.T) {
	svc := NewTrainService(repository.NewTrainRepository(), nil)
	ctx := context.Background()

	numbers := []int{30, 10, 20, 50, 40}
	for _, n := range numbers {
		_, err := svc.AddTrain(ctx, &AddTrainRequest{Number: n, Name: "T", Seats: n})
		require.NoError(t, err)
	}

	var listed []int
	for train := range svc.ListTrains(ctx) {
		listed = append(listed, train.Number)
	}
	assert.Equal(t, numbers, listed)
	assert.Len(t, slices.Collect(svc.ListTrains(ctx)), len(numbers))

	_, err := svc.GetTrain(ctx, 999)
	require.ErrorIs(t, err, entity.ErrTrainNotFound)
}
