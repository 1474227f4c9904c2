package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ds124wfegd/railway-reservation/internal/entity"
	"github.com/ds124wfegd/railway-reservation/internal/service"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditor struct {
	service.ReservationService
	result []entity.InventoryDiscrepancy
	err    error
}

func (s *stubAuditor) AuditInventory(context.Context) ([]entity.InventoryDiscrepancy, error) {
	return s.result, s.err
}

func TestRunAuditLogsDiscrepancies(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	stub := &stubAuditor{result: []entity.InventoryDiscrepancy{
		{TrainNumber: 100, TrainName: "Express", Capacity: 2, AvailableSeats: 2, ActiveBookings: 1, ExpectedSeats: 1},
	}}
	w := NewInventoryAuditWorker(stub, time.Minute, logger)

	w.runAudit(context.Background())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 100, entry.Data["train_number"])
	assert.Equal(t, 1, entry.Data["expected_seats"])
	assert.Equal(t, "inventory_audit", entry.Data["worker"])

	stats := w.GetStats()
	assert.Equal(t, int64(1), stats["runs"])
	assert.Equal(t, int64(1), stats["discrepancies"])
}

func TestRunAuditClean(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	w := NewInventoryAuditWorker(&stubAuditor{}, time.Minute, logger)

	w.runAudit(context.Background())

	assert.Empty(t, hook.AllEntries())
	assert.Equal(t, int64(0), w.GetStats()["discrepancies"])
}

func TestRunAuditError(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	w := NewInventoryAuditWorker(&stubAuditor{err: errors.New("interrupted")}, time.Minute, logger)

	w.runAudit(context.Background())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "Inventory audit failed", entry.Message)
}

func TestStartStopsWithContext(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	stub := &stubAuditor{}
	w := NewInventoryAuditWorker(stub, 5*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return w.GetStats()["runs"].(int64) >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, "Inventory audit worker stopped", hook.LastEntry().Message)
}

func TestStartDisabled(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	w := NewInventoryAuditWorker(&stubAuditor{}, 0, logger)

	w.Start(context.Background())

	assert.Equal(t, "Inventory audit worker disabled", hook.LastEntry().Message)
}
