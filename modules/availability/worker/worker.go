package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gekaluck/couple-moments-sub000/core/logger"
	"github.com/gekaluck/couple-moments-sub000/core/queue"
	"github.com/gekaluck/couple-moments-sub000/modules/availability/service"

	"github.com/hibiken/asynq"
)

// Worker consumes availability sync tasks off the queue.
type Worker struct {
	service service.AvailabilityService
}

func NewWorker(svc service.AvailabilityService) *Worker {
	return &Worker{service: svc}
}

func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(queue.TypeAvailabilitySync, w.HandleAvailabilitySync)
}

func (w *Worker) HandleAvailabilitySync(ctx context.Context, task *asynq.Task) error {
	var payload queue.AvailabilitySyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("AvailabilityWorker:HandleAvailabilitySync:Payload", "error", err)
		// Malformed payloads never become valid; drop instead of retrying.
		return nil
	}

	logger.Info("AvailabilityWorker:HandleAvailabilitySync:Start", "account_id", payload.AccountID)
	outcome, err := w.service.SyncAccount(ctx, payload.AccountID, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	logger.Info("AvailabilityWorker:HandleAvailabilitySync:Done",
		"account_id", payload.AccountID,
		"blocks", outcome.BlocksCount,
		"synced_at", outcome.SyncedAt,
	)
	return nil
}
