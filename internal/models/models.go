package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProductMap maps product codes to quantities. Absence of a key means zero.
// Stored as a JSONB column in Postgres.
type ProductMap map[string]int

// Value implements driver.Valuer.
func (p ProductMap) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *ProductMap) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = ProductMap{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ProductMap", src)
	}
}

// Clone returns a copy safe to mutate.
func (p ProductMap) Clone() ProductMap {
	out := make(ProductMap, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Shelf is a storage location document. Code doubles as the document key,
// e.g. shelf number 7 -> "R007". Version backs conditional writes.
type Shelf struct {
	Code     string     `db:"code" json:"code"`
	Name     string     `db:"name" json:"name"`
	Products ProductMap `db:"products" json:"products"`
	Version  int64      `db:"version" json:"-"`
	Updated  time.Time  `db:"updated" json:"updated"`
}

// Empty reports binary occupancy: no products at all means empty.
func (s *Shelf) Empty() bool {
	return len(s.Products) == 0
}

// ShelfCode formats a shelf number as its canonical zero-padded code.
func ShelfCode(num int) string {
	return fmt.Sprintf("R%03d", num)
}

// Request statuses
const (
	RequestStatusWaiting   = "waiting"
	RequestStatusFulfilled = "fulfilled"
)

// Request is a restock request. At most one waiting request may exist per
// product code at any time.
type Request struct {
	ID             string     `db:"id" json:"id"`
	Product        string     `db:"product" json:"product"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	RequestedBy    string     `db:"requested_by" json:"requested_by"`
	FulfilledAt    *time.Time `db:"fulfilled_at" json:"fulfilled_at,omitempty"`
	FulfilledBy    *string    `db:"fulfilled_by" json:"fulfilled_by,omitempty"`
	FulfilledShelf *string    `db:"fulfilled_shelf" json:"fulfilled_shelf,omitempty"`
}

// Audit log actions
const (
	ActionPut        = "PUT"
	ActionClearShelf = "CLEAR_SHELF"
	ActionSetup      = "SETUP"
	ActionRequest    = "REQUEST"
)

// LogEntry is an append-only audit record, never updated or deleted.
type LogEntry struct {
	ID      int64     `db:"id" json:"-"`
	Action  string    `db:"action" json:"action"`
	Shelf   string    `db:"shelf" json:"shelf"`
	Product string    `db:"product" json:"product"`
	Qty     int       `db:"qty" json:"qty"`
	Detail  string    `db:"detail" json:"detail"`
	PIN     string    `db:"pin" json:"pin"`
	Role    string    `db:"role" json:"role"`
	TS      time.Time `db:"ts" json:"ts"`
}

// ApplyDefaults fills missing string fields with "-" the way the log
// viewer expects them.
func (e *LogEntry) ApplyDefaults() {
	if e.Action == "" {
		e.Action = "-"
	}
	if e.Shelf == "" {
		e.Shelf = "-"
	}
	if e.Product == "" {
		e.Product = "-"
	}
	if e.Detail == "" {
		e.Detail = "-"
	}
	if e.PIN == "" {
		e.PIN = "-"
	}
	if e.Role == "" {
		e.Role = "-"
	}
}

// Session is handed to the client at login and kept client-side only.
type Session struct {
	Role      string `json:"role"`
	PIN       string `json:"pin"`
	LoginTime string `json:"loginTime"`
}

// SearchResult is one shelf holding the searched product.
type SearchResult struct {
	Shelf string `json:"shelf"`
	Qty   int    `json:"qty"`
}

// Stats summarizes shelf occupancy across the warehouse.
type Stats struct {
	Total int `json:"total"`
	Empty int `json:"empty"`
	Full  int `json:"full"`
	Qty   int `json:"qty"`
}
