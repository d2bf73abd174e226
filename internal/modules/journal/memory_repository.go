package journal

import (
	"sort"
	"sync"
	"time"

	"tradejournal/internal/domain"
)

// MemoryRepository is an in-memory Repository implementation.
// A single mutex serializes every mutation, so id assignment stays
// monotonic no matter how many import batches run concurrently.
type MemoryRepository struct {
	mu     sync.RWMutex
	trades map[int64]domain.Trade
	nextID int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		trades: make(map[int64]domain.Trade),
		nextID: 1,
	}
}

// Create inserts a new trade and returns it with its assigned id
func (r *MemoryRepository) Create(trade domain.Trade) (domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trade.ID = r.nextID
	r.nextID++
	r.trades[trade.ID] = trade

	return trade, nil
}

// Get retrieves a trade by id, or nil when it does not exist
func (r *MemoryRepository) Get(id int64) (*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trade, ok := r.trades[id]
	if !ok {
		return nil, nil
	}
	return &trade, nil
}

// GetAll retrieves all trades ordered by entry date descending
func (r *MemoryRepository) GetAll() ([]domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trades := make([]domain.Trade, 0, len(r.trades))
	for _, t := range r.trades {
		trades = append(trades, t)
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].EntryDate.Equal(trades[j].EntryDate) {
			return trades[i].ID > trades[j].ID
		}
		return trades[i].EntryDate.After(trades[j].EntryDate)
	})

	return trades, nil
}

// GetByDateRange retrieves trades with entry date in [start, end], inclusive
func (r *MemoryRepository) GetByDateRange(start, end time.Time) ([]domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trades []domain.Trade
	for _, t := range r.trades {
		if t.EntryDate.Before(start) || t.EntryDate.After(end) {
			continue
		}
		trades = append(trades, t)
	}

	sort.Slice(trades, func(i, j int) bool {
		if trades[i].EntryDate.Equal(trades[j].EntryDate) {
			return trades[i].ID > trades[j].ID
		}
		return trades[i].EntryDate.After(trades[j].EntryDate)
	})

	return trades, nil
}

// Update replaces the stored trade with the same id
func (r *MemoryRepository) Update(trade domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trades[trade.ID]; !ok {
		return ErrNotFound
	}
	r.trades[trade.ID] = trade

	return nil
}

// Delete removes a trade by id. The id counter never rewinds, so a
// deleted id is never handed out again.
func (r *MemoryRepository) Delete(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trades[id]; !ok {
		return false, nil
	}
	delete(r.trades, id)

	return true, nil
}
