package store

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
)

// AppendLog inserts an audit record. Log rows are never updated or deleted.
func (s *Store) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO logs (action, shelf, product, qty, detail, pin, role, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		entry.Action, entry.Shelf, entry.Product, entry.Qty,
		entry.Detail, entry.PIN, entry.Role, entry.TS)
	if err != nil {
		return fmt.Errorf("failed to append log: %w", err)
	}
	return nil
}

// ListLogs retrieves the newest audit records, newest first, with missing
// fields defaulted for display.
func (s *Store) ListLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM logs ORDER BY ts DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].ApplyDefaults()
	}
	return entries, nil
}
