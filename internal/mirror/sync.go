package mirror

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	"go.uber.org/zap"
)

// Store is the slice of the document store the syncer needs.
type Store interface {
	ListShelves(ctx context.Context) (map[string]models.Shelf, error)
	ListRecentRequests(ctx context.Context, limit int) ([]models.Request, error)
}

// Syncer reloads mirror collections from the store. A reload replaces the
// whole collection, so replayed or duplicate change events are harmless.
type Syncer struct {
	store        Store
	mirror       *Mirror
	requestDepth int
	logger       *zap.Logger
}

// NewSyncer creates a syncer that keeps at most requestDepth recent
// requests mirrored.
func NewSyncer(store Store, mirror *Mirror, requestDepth int) *Syncer {
	return &Syncer{
		store:        store,
		mirror:       mirror,
		requestDepth: requestDepth,
		logger:       util.GetLogger(),
	}
}

// SyncShelves reloads the shelves collection into the mirror.
func (s *Syncer) SyncShelves(ctx context.Context) error {
	shelves, err := s.store.ListShelves(ctx)
	if err != nil {
		util.MirrorSyncFailures.WithLabelValues("shelves").Inc()
		return fmt.Errorf("failed to sync shelves: %w", err)
	}

	s.mirror.ReplaceShelves(shelves)
	util.MirrorSyncTotal.WithLabelValues("shelves").Inc()
	return nil
}

// SyncRequests reloads the recent-requests window into the mirror.
func (s *Syncer) SyncRequests(ctx context.Context) error {
	requests, err := s.store.ListRecentRequests(ctx, s.requestDepth)
	if err != nil {
		util.MirrorSyncFailures.WithLabelValues("requests").Inc()
		return fmt.Errorf("failed to sync requests: %w", err)
	}

	s.mirror.ReplaceRequests(requests)
	util.MirrorSyncTotal.WithLabelValues("requests").Inc()
	return nil
}

// SyncAll performs a full refresh of both collections, used at startup
// before the change consumer takes over.
func (s *Syncer) SyncAll(ctx context.Context) error {
	if err := s.SyncShelves(ctx); err != nil {
		return err
	}
	if err := s.SyncRequests(ctx); err != nil {
		return err
	}

	s.logger.Info("Mirror synced from store")
	return nil
}
