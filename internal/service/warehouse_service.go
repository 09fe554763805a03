package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/mirror"
	"warehouse-service/internal/models"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// A shelf write gets the initial attempt plus refetch-and-retry on
	// version conflicts, then gives up with a conflict result.
	maxShelfWriteAttempts = 4
	conflictRetryBackoff  = 25 * time.Millisecond

	requestLockTTL = 5 * time.Second
)

// Store is the slice of the document store the access layer needs.
type Store interface {
	GetShelf(ctx context.Context, code string) (*models.Shelf, error)
	UpdateShelfCAS(ctx context.Context, code string, products models.ProductMap, expectedVersion int64) error
	UpsertShelvesBatch(ctx context.Context, codes []string) error
	FindWaitingRequest(ctx context.Context, product string) (*models.Request, error)
	CreateRequest(ctx context.Context, req *models.Request) error
	AppendLog(ctx context.Context, entry *models.LogEntry) error
	ListLogs(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// Locker guards the request check-then-insert critical section.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// ChangePublisher notifies mirror holders after a collection write.
type ChangePublisher interface {
	PublishShelvesChanged(ctx context.Context, action, shelf, product string) error
	PublishRequestsChanged(ctx context.Context, action, product string) error
}

// Result is the uniform outcome of every mutating operation. Errors never
// escape the access layer; callers branch on Success only.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WarehouseService is the inventory access layer: every operation the panel
// exposes goes through here.
type WarehouseService struct {
	store     Store
	mirror    *mirror.Mirror
	locker    Locker
	publisher ChangePublisher
	logger    *zap.Logger
}

// NewWarehouseService creates a new warehouse service
func NewWarehouseService(st Store, m *mirror.Mirror, locker Locker, publisher ChangePublisher) *WarehouseService {
	return &WarehouseService{
		store:     st,
		mirror:    m,
		locker:    locker,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Put places qty units of a product on a shelf. The pre-image comes from
// the mirror; the write is conditional on the version read, with a bounded
// refetch-and-retry loop on conflict.
func (s *WarehouseService) Put(ctx context.Context, product string, shelfNum, qty int, pin string) Result {
	ctx, span := util.StartSpan(ctx, "WarehouseService.Put")
	defer span.End()

	product = strings.TrimSpace(product)
	if product == "" {
		return s.validationFailure("put", "product code must not be empty")
	}
	if shelfNum <= 0 {
		return s.validationFailure("put", "shelf number must be positive")
	}
	if qty <= 0 {
		return s.validationFailure("put", "quantity must be positive")
	}

	code := models.ShelfCode(shelfNum)
	shelf, ok := s.mirror.Shelf(code)
	if !ok {
		util.OperationFailures.WithLabelValues("put", "not_found").Inc()
		return Result{Message: fmt.Sprintf("shelf not found: %s", code)}
	}

	start := time.Now()
	defer func() {
		util.ShelfWriteLatency.Observe(time.Since(start).Seconds())
	}()

	res := s.writeShelf(ctx, "put", code, shelf, func(products models.ProductMap) {
		products[product] += qty
	})
	if !res.Success {
		return res
	}

	util.PutsTotal.Inc()
	s.appendLog(ctx, &models.LogEntry{
		Action:  models.ActionPut,
		Shelf:   code,
		Product: product,
		Qty:     qty,
		Detail:  "product placed on shelf",
		PIN:     pin,
	})
	s.publishShelvesChanged(ctx, models.ActionPut, code, product)

	s.logger.Info("Product placed",
		zap.String("shelf", code),
		zap.String("product", product),
		zap.Int("qty", qty))

	return Result{Success: true, Message: "product placed on shelf"}
}

// ClearShelf resets a shelf's product map to empty. Unconditional reset,
// not a decrement: prior contents are irrelevant and a second clear on an
// empty shelf succeeds.
func (s *WarehouseService) ClearShelf(ctx context.Context, shelfNum int, pin string) Result {
	ctx, span := util.StartSpan(ctx, "WarehouseService.ClearShelf")
	defer span.End()

	if shelfNum <= 0 {
		return s.validationFailure("clear", "shelf number must be positive")
	}

	code := models.ShelfCode(shelfNum)
	shelf, ok := s.mirror.Shelf(code)
	if !ok {
		util.OperationFailures.WithLabelValues("clear", "not_found").Inc()
		return Result{Message: fmt.Sprintf("shelf not found: %s", code)}
	}

	res := s.writeShelf(ctx, "clear", code, shelf, func(products models.ProductMap) {
		for k := range products {
			delete(products, k)
		}
	})
	if !res.Success {
		return res
	}

	util.ClearsTotal.Inc()
	s.appendLog(ctx, &models.LogEntry{
		Action: models.ActionClearShelf,
		Shelf:  code,
		Detail: "shelf emptied",
		PIN:    pin,
	})
	s.publishShelvesChanged(ctx, models.ActionClearShelf, code, "")

	s.logger.Info("Shelf cleared", zap.String("shelf", code))
	return Result{Success: true, Message: "shelf cleared"}
}

// Search finds every shelf holding the product. Pure mirror read.
func (s *WarehouseService) Search(product string) []models.SearchResult {
	return s.mirror.Search(strings.TrimSpace(product))
}

// Shelves lists every shelf with its occupancy and contents, sorted by
// code. Pure mirror read.
func (s *WarehouseService) Shelves() []models.Shelf {
	return s.mirror.Shelves()
}

// Stats summarizes shelf occupancy. Pure mirror read.
func (s *WarehouseService) Stats() models.Stats {
	return s.mirror.Stats()
}

// Requests lists the recent requests held in the mirror, newest first.
func (s *WarehouseService) Requests() []models.Request {
	return s.mirror.Requests()
}

// CreateRequest raises a restock request, rejecting duplicates: at most one
// waiting request may exist per product. The duplicate check reads the live
// store, and a per-product lock closes the check-then-insert window.
func (s *WarehouseService) CreateRequest(ctx context.Context, product, pin string) Result {
	ctx, span := util.StartSpan(ctx, "WarehouseService.CreateRequest")
	defer span.End()

	product = strings.TrimSpace(product)
	if product == "" {
		return s.validationFailure("request", "product code must not be empty")
	}

	lockKey := fmt.Sprintf("request:%s", product)
	locked, err := s.locker.AcquireLock(ctx, lockKey, requestLockTTL)
	if err != nil {
		// Lock service unavailable: fall back to the bare check-then-insert
		// rather than refusing the request outright.
		s.logger.Warn("Request lock unavailable", zap.String("product", product), zap.Error(err))
	} else if !locked {
		util.RequestsDuplicateTotal.Inc()
		return Result{Message: "a request for this product is already in progress"}
	} else {
		defer func() {
			if err := s.locker.ReleaseLock(ctx, lockKey); err != nil {
				s.logger.Warn("Failed to release request lock", zap.Error(err))
			}
		}()
	}

	existing, err := s.store.FindWaitingRequest(ctx, product)
	if err != nil {
		util.OperationFailures.WithLabelValues("request", "store").Inc()
		return Result{Message: err.Error()}
	}
	if existing != nil {
		util.RequestsDuplicateTotal.Inc()
		return Result{Message: "a waiting request already exists for this product"}
	}

	req := &models.Request{
		ID:          uuid.New().String(),
		Product:     product,
		Status:      models.RequestStatusWaiting,
		CreatedAt:   time.Now(),
		RequestedBy: pin,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		util.OperationFailures.WithLabelValues("request", "store").Inc()
		return Result{Message: err.Error()}
	}

	util.RequestsCreatedTotal.Inc()
	s.appendLog(ctx, &models.LogEntry{
		Action:  models.ActionRequest,
		Product: product,
		Detail:  "restock requested",
		PIN:     pin,
	})
	s.publishRequestsChanged(ctx, models.ActionRequest, product)

	s.logger.Info("Request created", zap.String("product", product), zap.String("id", req.ID))
	return Result{Success: true, Message: "request received"}
}

// SetupShelves provisions shelves R001..R{count} with empty product maps,
// in chunked batches. Re-running resets every shelf in range back to empty,
// including ones that hold inventory.
func (s *WarehouseService) SetupShelves(ctx context.Context, count int, pin string) Result {
	ctx, span := util.StartSpan(ctx, "WarehouseService.SetupShelves")
	defer span.End()

	if count <= 0 {
		return s.validationFailure("setup", "shelf count must be positive")
	}

	codes := make([]string, count)
	for i := 0; i < count; i++ {
		codes[i] = models.ShelfCode(i + 1)
	}

	if err := s.store.UpsertShelvesBatch(ctx, codes); err != nil {
		util.OperationFailures.WithLabelValues("setup", "store").Inc()
		return Result{Message: err.Error()}
	}

	util.SetupsTotal.Inc()
	s.appendLog(ctx, &models.LogEntry{
		Action: models.ActionSetup,
		Detail: fmt.Sprintf("manual setup: %d shelves", count),
		PIN:    pin,
	})
	s.publishShelvesChanged(ctx, models.ActionSetup, "", "")

	s.logger.Info("Shelves provisioned", zap.Int("count", count))
	return Result{Success: true, Message: fmt.Sprintf("%d shelves created", count)}
}

// GetLogs fetches the newest audit records straight from the store. The
// caller clamps the limit. A fetch failure yields an empty list, matching
// the panel's read-only log view.
func (s *WarehouseService) GetLogs(ctx context.Context, limit int) []models.LogEntry {
	ctx, span := util.StartSpan(ctx, "WarehouseService.GetLogs")
	defer span.End()

	entries, err := s.store.ListLogs(ctx, limit)
	if err != nil {
		s.logger.Warn("Failed to fetch logs", zap.Error(err))
		return []models.LogEntry{}
	}
	return entries
}

// writeShelf applies mutate to a clone of the pre-image product map and
// writes it conditioned on the pre-image version. On conflict it refetches
// the shelf from the store (not the mirror) and retries.
func (s *WarehouseService) writeShelf(ctx context.Context, op, code string, shelf models.Shelf, mutate func(models.ProductMap)) Result {
	image := shelf
	for attempt := 0; attempt < maxShelfWriteAttempts; attempt++ {
		if attempt > 0 {
			util.ShelfWriteConflicts.Inc()
			select {
			case <-ctx.Done():
				util.OperationFailures.WithLabelValues(op, "store").Inc()
				return Result{Message: ctx.Err().Error()}
			case <-time.After(time.Duration(attempt) * conflictRetryBackoff):
			}

			fresh, err := s.store.GetShelf(ctx, code)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					util.OperationFailures.WithLabelValues(op, "not_found").Inc()
					return Result{Message: fmt.Sprintf("shelf not found: %s", code)}
				}
				util.OperationFailures.WithLabelValues(op, "store").Inc()
				return Result{Message: err.Error()}
			}
			image = *fresh
		}

		products := image.Products.Clone()
		mutate(products)

		err := s.store.UpdateShelfCAS(ctx, code, products, image.Version)
		if err == nil {
			return Result{Success: true}
		}
		if errors.Is(err, store.ErrNotFound) {
			util.OperationFailures.WithLabelValues(op, "not_found").Inc()
			return Result{Message: fmt.Sprintf("shelf not found: %s", code)}
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			util.OperationFailures.WithLabelValues(op, "store").Inc()
			return Result{Message: err.Error()}
		}
	}

	util.OperationFailures.WithLabelValues(op, "conflict").Inc()
	return Result{Message: fmt.Sprintf("shelf %s is busy, please retry", code)}
}

// appendLog writes the audit record for a mutation. Fire-and-forget: a
// failed log write never fails the primary operation.
func (s *WarehouseService) appendLog(ctx context.Context, entry *models.LogEntry) {
	entry.TS = time.Now()
	if role, ok := auth.RoleForPIN(entry.PIN); ok {
		entry.Role = role
	}
	entry.ApplyDefaults()

	if err := s.store.AppendLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to append audit log",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

func (s *WarehouseService) publishShelvesChanged(ctx context.Context, action, shelf, product string) {
	if err := s.publisher.PublishShelvesChanged(ctx, action, shelf, product); err != nil {
		s.logger.Warn("Failed to publish shelves change", zap.Error(err))
	}
}

func (s *WarehouseService) publishRequestsChanged(ctx context.Context, action, product string) {
	if err := s.publisher.PublishRequestsChanged(ctx, action, product); err != nil {
		s.logger.Warn("Failed to publish requests change", zap.Error(err))
	}
}

func (s *WarehouseService) validationFailure(op, message string) Result {
	util.OperationFailures.WithLabelValues(op, "validation").Inc()
	return Result{Message: message}
}
