// Package mirror holds an in-memory, eventually-consistent read model of
// the shelves and requests collections. It is refreshed wholesale by the
// change-event worker and is never the source of truth for a write: the
// store's version check decides conflicts.
package mirror

import (
	"sort"
	"sync"

	"warehouse-service/internal/models"
)

type Mirror struct {
	mu       sync.RWMutex
	shelves  map[string]models.Shelf
	requests []models.Request
}

// New creates an empty mirror.
func New() *Mirror {
	return &Mirror{
		shelves: make(map[string]models.Shelf),
	}
}

// ReplaceShelves swaps in a fresh snapshot of the shelves collection.
func (m *Mirror) ReplaceShelves(shelves map[string]models.Shelf) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shelves == nil {
		shelves = make(map[string]models.Shelf)
	}
	m.shelves = shelves
}

// ReplaceRequests swaps in a fresh snapshot of recent requests.
func (m *Mirror) ReplaceRequests(requests []models.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = requests
}

// Shelf returns the mirrored shelf for a code. The product map is cloned so
// callers can compute a new mapping without touching shared state.
func (m *Mirror) Shelf(code string) (models.Shelf, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	shelf, ok := m.shelves[code]
	if !ok {
		return models.Shelf{}, false
	}
	shelf.Products = shelf.Products.Clone()
	return shelf, true
}

// Shelves returns every mirrored shelf sorted by code, the rack-overview
// read. Product maps are cloned.
func (m *Mirror) Shelves() []models.Shelf {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Shelf, 0, len(m.shelves))
	for _, shelf := range m.shelves {
		shelf.Products = shelf.Products.Clone()
		out = append(out, shelf)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

// Requests returns the mirrored recent requests, newest first.
func (m *Mirror) Requests() []models.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Search finds every shelf holding the product, sorted by shelf code.
// Pure mirror read, no store round-trip.
func (m *Mirror) Search(product string) []models.SearchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []models.SearchResult{}
	for code, shelf := range m.shelves {
		if qty := shelf.Products[product]; qty > 0 {
			results = append(results, models.SearchResult{Shelf: code, Qty: qty})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Shelf < results[j].Shelf
	})
	return results
}

// Stats summarizes shelf occupancy over the mirror.
func (m *Mirror) Stats() models.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := models.Stats{Total: len(m.shelves)}
	for _, shelf := range m.shelves {
		if shelf.Empty() {
			stats.Empty++
			continue
		}
		stats.Full++
		for _, qty := range shelf.Products {
			stats.Qty += qty
		}
	}
	return stats
}
