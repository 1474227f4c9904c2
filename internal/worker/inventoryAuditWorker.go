package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ds124wfegd/railway-reservation/internal/service"

	"github.com/sirupsen/logrus"
)

// InventoryAuditWorker periodically checks that every train's free seats
// match its capacity minus the active bookings held against it.
type InventoryAuditWorker struct {
	reservationService service.ReservationService
	interval           time.Duration
	log                logrus.FieldLogger

	runs          atomic.Int64
	discrepancies atomic.Int64
}

func NewInventoryAuditWorker(reservationService service.ReservationService, interval time.Duration, log logrus.FieldLogger) *InventoryAuditWorker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &InventoryAuditWorker{
		reservationService: reservationService,
		interval:           interval,
		log:                log.WithField("worker", "inventory_audit"),
	}
}

// Start blocks until ctx is cancelled. A non-positive interval disables the worker.
func (w *InventoryAuditWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("Inventory audit worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.WithField("interval", w.interval.String()).Info("Inventory audit worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Inventory audit worker stopped")
			return
		case <-ticker.C:
			w.runAudit(ctx)
		}
	}
}

func (w *InventoryAuditWorker) runAudit(ctx context.Context) {
	w.runs.Add(1)

	discrepancies, err := w.reservationService.AuditInventory(ctx)
	if err != nil {
		w.log.WithError(err).Error("Inventory audit failed")
		return
	}

	if len(discrepancies) == 0 {
		w.log.Debug("Inventory audit found no discrepancies")
		return
	}

	w.discrepancies.Add(int64(len(discrepancies)))
	for _, d := range discrepancies {
		w.log.WithFields(logrus.Fields{
			"train_number":    d.TrainNumber,
			"train_name":      d.TrainName,
			"capacity":        d.Capacity,
			"available_seats": d.AvailableSeats,
			"active_bookings": d.ActiveBookings,
			"expected_seats":  d.ExpectedSeats,
		}).Warn("Seat inventory does not match bookings")
	}
}

// GetStats returns counters describing the worker's activity
func (w *InventoryAuditWorker) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"worker_type":   "inventory_audit",
		"interval":      w.interval.String(),
		"runs":          w.runs.Load(),
		"discrepancies": w.discrepancies.Load(),
	}
}
