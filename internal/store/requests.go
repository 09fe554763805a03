package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"warehouse-service/internal/models"
)

// CreateRequest inserts a new restock request.
func (s *Store) CreateRequest(ctx context.Context, req *models.Request) error {
	query := `
		INSERT INTO requests (id, product, status, created_at, requested_by, fulfilled_at, fulfilled_by, fulfilled_shelf)
		VALUES ($1, $2, $3, $4, $5, NULL, NULL, NULL)`

	_, err := s.db.ExecContext(ctx, query,
		req.ID, req.Product, req.Status, req.CreatedAt, req.RequestedBy)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// FindWaitingRequest returns the waiting request for a product, or nil when
// none exists. This is the duplicate check and deliberately reads the live
// store rather than the mirror.
func (s *Store) FindWaitingRequest(ctx context.Context, product string) (*models.Request, error) {
	var req models.Request
	err := s.db.GetContext(ctx, &req,
		"SELECT * FROM requests WHERE status = $1 AND product = $2 LIMIT 1",
		models.RequestStatusWaiting, product)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRecentRequests retrieves the newest requests, newest first.
func (s *Store) ListRecentRequests(ctx context.Context, limit int) ([]models.Request, error) {
	var requests []models.Request
	err := s.db.SelectContext(ctx, &requests,
		"SELECT * FROM requests ORDER BY created_at DESC LIMIT $1", limit)
	return requests, err
}

// MarkRequestFulfilled transitions a request to fulfilled. Nothing in this
// service calls it automatically; it exists for the external fulfillment
// workflow.
func (s *Store) MarkRequestFulfilled(ctx context.Context, id, fulfilledBy, fulfilledShelf string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE requests SET status = $1, fulfilled_at = $2, fulfilled_by = $3, fulfilled_shelf = $4 WHERE id = $5",
		models.RequestStatusFulfilled, time.Now(), fulfilledBy, fulfilledShelf, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return nil
}
