package worker

import (
	"context"
	"errors"
	"log"

	"inventory-sync-service/internal/broker"
	"inventory-sync-service/internal/models"
	"inventory-sync-service/internal/service"
)

// SyncWorker consumes SyncRequested events from the scheduler topic and runs
// the orchestrator for the requested store.
type SyncWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	orchestrator *service.Orchestrator
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(consumer *broker.Consumer, orchestrator *service.Orchestrator) *SyncWorker {
	eventHandler := broker.NewEventHandler()

	w := &SyncWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		orchestrator: orchestrator,
	}
	eventHandler.OnSyncRequested(w.handleSyncRequested)

	return w
}

// Start starts the worker
func (w *SyncWorker) Start(ctx context.Context) error {
	log.Println("Starting sync worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SyncWorker) Stop() error {
	log.Println("Stopping sync worker...")
	return w.consumer.Close()
}

func (w *SyncWorker) handleSyncRequested(ctx context.Context, event *models.SyncRequestedEvent) error {
	log.Printf("Processing sync request for store: %d", event.StoreID)

	summary, err := w.orchestrator.Run(ctx, service.SyncRequest{
		StoreID:  event.StoreID,
		Entities: event.Entities,
	})
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			// Another trigger beat us to it; the message is done.
			log.Printf("Sync already in progress for store %d, skipping", event.StoreID)
			return nil
		}
		return err
	}

	log.Printf("Sync completed for store %d: %d/%d operations succeeded",
		event.StoreID, summary.SuccessfulOperations, summary.TotalOperations)
	return nil
}
