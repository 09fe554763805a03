package worker

import (
	"context"
	"log"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/mirror"
	"warehouse-service/internal/models"
)

// MirrorWorker consumes collection-change events and refreshes the
// in-memory mirror. A refresh replaces the collection wholesale, so
// duplicate or replayed events need no dedup.
type MirrorWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	syncer       *mirror.Syncer
}

// NewMirrorWorker creates a new mirror worker
func NewMirrorWorker(consumer *broker.Consumer, syncer *mirror.Syncer) *MirrorWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnShelvesChanged(func(ctx context.Context, _ *models.ShelvesChangedEvent) error {
		return syncer.SyncShelves(ctx)
	})
	eventHandler.OnRequestsChanged(func(ctx context.Context, _ *models.RequestsChangedEvent) error {
		return syncer.SyncRequests(ctx)
	})

	return &MirrorWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		syncer:       syncer,
	}
}

// Start starts the worker
func (w *MirrorWorker) Start(ctx context.Context) error {
	log.Println("Starting mirror worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *MirrorWorker) Stop() error {
	log.Println("Stopping mirror worker...")
	return w.consumer.Close()
}
