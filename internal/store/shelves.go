package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"warehouse-service/internal/models"
)

// GetShelf retrieves a single shelf document by code.
func (s *Store) GetShelf(ctx context.Context, code string) (*models.Shelf, error) {
	var shelf models.Shelf
	err := s.db.GetContext(ctx, &shelf, "SELECT * FROM shelves WHERE code = $1", code)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shelf %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

// ListShelves retrieves every shelf document keyed by code.
func (s *Store) ListShelves(ctx context.Context) (map[string]models.Shelf, error) {
	var shelves []models.Shelf
	if err := s.db.SelectContext(ctx, &shelves, "SELECT * FROM shelves ORDER BY code"); err != nil {
		return nil, err
	}

	out := make(map[string]models.Shelf, len(shelves))
	for _, shelf := range shelves {
		out[shelf.Code] = shelf
	}
	return out, nil
}

// UpdateShelfCAS overwrites a shelf's product map, conditioned on the
// version the caller read. Returns ErrVersionConflict when another writer
// got there first, ErrNotFound when the shelf does not exist.
func (s *Store) UpdateShelfCAS(ctx context.Context, code string, products models.ProductMap, expectedVersion int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE shelves SET products = $1, version = version + 1, updated = NOW() WHERE code = $2 AND version = $3",
		products, code, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update shelf %s: %w", code, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM shelves WHERE code = $1)", code); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("shelf %s: %w", code, ErrNotFound)
		}
		return fmt.Errorf("shelf %s: %w", code, ErrVersionConflict)
	}
	return nil
}

// UpsertShelvesBatch provisions shelf documents with empty product maps,
// chunked to respect the per-batch write bound. Existing shelves are reset
// to empty, matching the original provisioner's blind overwrite.
func (s *Store) UpsertShelvesBatch(ctx context.Context, codes []string) error {
	for start := 0; start < len(codes); start += setupChunkSize {
		end := start + setupChunkSize
		if end > len(codes) {
			end = len(codes)
		}
		if err := s.upsertChunk(ctx, codes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertChunk(ctx context.Context, codes []string) error {
	values := make([]string, 0, len(codes))
	args := make([]interface{}, 0, len(codes))
	for i, code := range codes {
		values = append(values, fmt.Sprintf("($%d, $%d, '{}'::jsonb, 0, NOW())", 2*i+1, 2*i+2))
		args = append(args, code, code)
	}

	query := fmt.Sprintf(`
		INSERT INTO shelves (code, name, products, version, updated)
		VALUES %s
		ON CONFLICT (code) DO UPDATE
		SET products = '{}'::jsonb, version = shelves.version + 1, updated = NOW()`,
		strings.Join(values, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert shelves: %w", err)
	}
	return nil
}
