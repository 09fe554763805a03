package mirror

import (
	"testing"

	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(shelves map[string]models.ProductMap) map[string]models.Shelf {
	out := make(map[string]models.Shelf, len(shelves))
	for code, products := range shelves {
		out[code] = models.Shelf{Code: code, Name: code, Products: products}
	}
	return out
}

func TestSearchSortsByShelfCode(t *testing.T) {
	m := New()
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{
		"R010": {"A": 5},
		"R001": {"A": 2},
		"R002": {"B": 1},
	}))

	results := m.Search("A")
	require.Len(t, results, 2)
	assert.Equal(t, "R001", results[0].Shelf)
	assert.Equal(t, 2, results[0].Qty)
	assert.Equal(t, "R010", results[1].Shelf)
	assert.Equal(t, 5, results[1].Qty)
}

func TestSearchSkipsZeroQuantities(t *testing.T) {
	m := New()
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{
		"R001": {"A": 0},
		"R002": {},
	}))

	assert.Empty(t, m.Search("A"))
	assert.Empty(t, m.Search("Z"))
}

func TestStats(t *testing.T) {
	m := New()
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{
		"R001": {"A": 2, "B": 3},
		"R002": {},
		"R003": {"C": 1},
	}))

	stats := m.Stats()
	assert.Equal(t, models.Stats{Total: 3, Empty: 1, Full: 2, Qty: 6}, stats)
	assert.Equal(t, stats.Total, stats.Empty+stats.Full)
}

func TestStatsEmptyMirror(t *testing.T) {
	m := New()
	assert.Equal(t, models.Stats{}, m.Stats())
}

func TestReplaceShelvesSwapsWholesale(t *testing.T) {
	m := New()
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{"R001": {"A": 1}}))
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{"R002": {"B": 2}}))

	_, ok := m.Shelf("R001")
	assert.False(t, ok)
	shelf, ok := m.Shelf("R002")
	require.True(t, ok)
	assert.Equal(t, 2, shelf.Products["B"])
}

func TestShelfReturnsClone(t *testing.T) {
	m := New()
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{"R001": {"A": 1}}))

	shelf, ok := m.Shelf("R001")
	require.True(t, ok)
	shelf.Products["A"] = 99

	again, _ := m.Shelf("R001")
	assert.Equal(t, 1, again.Products["A"])
}

func TestShelvesSortedByCode(t *testing.T) {
	m := New()
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{
		"R010": {"A": 5},
		"R001": {"A": 2},
		"R002": {},
	}))

	shelves := m.Shelves()
	require.Len(t, shelves, 3)
	assert.Equal(t, "R001", shelves[0].Code)
	assert.Equal(t, "R002", shelves[1].Code)
	assert.Equal(t, "R010", shelves[2].Code)
	assert.Equal(t, 5, shelves[2].Products["A"])
	assert.True(t, shelves[1].Empty())
}

func TestShelvesReturnsClones(t *testing.T) {
	m := New()
	m.ReplaceShelves(snapshot(map[string]models.ProductMap{"R001": {"A": 1}}))

	shelves := m.Shelves()
	require.Len(t, shelves, 1)
	shelves[0].Products["A"] = 99

	again, _ := m.Shelf("R001")
	assert.Equal(t, 1, again.Products["A"])
}

func TestRequestsReturnsCopy(t *testing.T) {
	m := New()
	m.ReplaceRequests([]models.Request{{ID: "1", Product: "A"}})

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	reqs[0].Product = "mutated"

	assert.Equal(t, "A", m.Requests()[0].Product)
}
