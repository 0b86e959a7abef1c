// internal/service/local_vendor.go
package service

import (
	"context"
	"log/slog"

	"github.com/targetly/crm-backend/internal/queue"
	"github.com/targetly/crm-backend/internal/vendor"
)

// StartLocalVendor subscribes a simulated vendor to the in-memory dispatch
// queue, used when no broker is configured. Outcomes are applied through the
// same receipt path the HTTP callback uses, so the lifecycle semantics stay
// identical to the out-of-process vendor.
func StartLocalVendor(q *queue.InMemoryQueue, sim *vendor.Simulator, delivery *DeliveryService, logger *slog.Logger) {
	q.Subscribe(func(job queue.DispatchJob) error {
		status := sim.Outcome()
		if _, err := delivery.ApplyReceipt(context.Background(), job.LogID, status, "simulated delivery"); err != nil {
			logger.Error("local vendor failed to apply receipt", "log_id", job.LogID, "error", err)
			return err
		}
		logger.Info("local vendor delivered", "log_id", job.LogID, "status", string(status))
		return nil
	})
}
