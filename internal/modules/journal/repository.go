// Package journal owns the trade collection: storage, P&L derivation
// and metric aggregation.
package journal

import (
	"errors"
	"time"

	"tradejournal/internal/domain"
)

// ErrNotFound is returned when an operation references a trade id that
// does not exist. It is an expected condition for callers probing by id.
var ErrNotFound = errors.New("trade not found")

// Repository defines the interface for trade persistence.
// Implementations must assign strictly increasing ids that are never
// reused, even after deletion and across concurrent batches.
type Repository interface {
	// Create inserts a new trade and returns it with its assigned id
	Create(trade domain.Trade) (domain.Trade, error)

	// Get retrieves a trade by id, or nil when it does not exist
	Get(id int64) (*domain.Trade, error)

	// GetAll retrieves all trades ordered by entry date descending
	GetAll() ([]domain.Trade, error)

	// GetByDateRange retrieves trades whose entry date falls within
	// [start, end], inclusive on both bounds
	GetByDateRange(start, end time.Time) ([]domain.Trade, error)

	// Update replaces the stored trade with the same id.
	// Returns ErrNotFound when the id does not exist.
	Update(trade domain.Trade) error

	// Delete removes a trade by id. Returns true if a record existed.
	Delete(id int64) (bool, error)
}

// Compile-time checks that both implementations satisfy Repository
var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*TradeRepository)(nil)
)
