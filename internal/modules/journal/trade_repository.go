package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tradejournal/internal/domain"
)

// tradesColumns is the list of columns for the trades table.
// Used to avoid SELECT * which can break when the schema changes.
// Column order must match the scan helpers below.
const tradesColumns = `id, symbol, side, quantity, entry_price, exit_price, entry_date, exit_date, pnl, commission, instrument_type, strategy, notes, is_open`

// TradeRepository is the SQLite-backed Repository implementation.
// Ids come from AUTOINCREMENT, which SQLite guarantees to be
// monotonically increasing and never reused.
type TradeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewTradeRepository creates a new SQLite trade repository
func NewTradeRepository(db *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}
}

// Create inserts a new trade and returns it with its assigned id
func (r *TradeRepository) Create(trade domain.Trade) (domain.Trade, error) {
	query := `
		INSERT INTO trades
		(symbol, side, quantity, entry_price, exit_price, entry_date, exit_date,
		 pnl, commission, instrument_type, strategy, notes, is_open)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		trade.Symbol,
		string(trade.Side),
		trade.Quantity,
		trade.EntryPrice,
		nullFloat64Ptr(trade.ExitPrice),
		trade.EntryDate.Unix(),
		nullTimePtr(trade.ExitDate),
		nullFloat64Ptr(trade.PNL),
		trade.Commission,
		string(trade.InstrumentType),
		nullString(trade.Strategy),
		nullString(trade.Notes),
		boolToInt(trade.IsOpen),
	)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("failed to create trade: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Trade{}, fmt.Errorf("failed to get trade id: %w", err)
	}
	trade.ID = id

	r.log.Debug().
		Int64("id", trade.ID).
		Str("symbol", trade.Symbol).
		Str("side", string(trade.Side)).
		Msg("Trade created")

	return trade, nil
}

// Get retrieves a trade by id, or nil when it does not exist
func (r *TradeRepository) Get(id int64) (*domain.Trade, error) {
	query := "SELECT " + tradesColumns + " FROM trades WHERE id = ?"

	row := r.db.QueryRow(query, id)
	trade, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}

	return &trade, nil
}

// GetAll retrieves all trades, most recent entry first
func (r *TradeRepository) GetAll() ([]domain.Trade, error) {
	query := `
		SELECT ` + tradesColumns + ` FROM trades
		ORDER BY entry_date DESC, id DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// GetByDateRange retrieves trades with entry date in [start, end], inclusive
func (r *TradeRepository) GetByDateRange(start, end time.Time) ([]domain.Trade, error) {
	query := `
		SELECT ` + tradesColumns + ` FROM trades
		WHERE entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date DESC, id DESC
	`

	rows, err := r.db.Query(query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get trades in range: %w", err)
	}
	defer rows.Close()

	return collectTrades(rows)
}

// Update replaces the stored trade with the same id
func (r *TradeRepository) Update(trade domain.Trade) error {
	query := `
		UPDATE trades
		SET symbol = ?, side = ?, quantity = ?, entry_price = ?, exit_price = ?,
		    entry_date = ?, exit_date = ?, pnl = ?, commission = ?,
		    instrument_type = ?, strategy = ?, notes = ?, is_open = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		trade.Symbol,
		string(trade.Side),
		trade.Quantity,
		trade.EntryPrice,
		nullFloat64Ptr(trade.ExitPrice),
		trade.EntryDate.Unix(),
		nullTimePtr(trade.ExitDate),
		nullFloat64Ptr(trade.PNL),
		trade.Commission,
		string(trade.InstrumentType),
		nullString(trade.Strategy),
		nullString(trade.Notes),
		boolToInt(trade.IsOpen),
		trade.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a trade by id. Returns true if a record existed.
func (r *TradeRepository) Delete(id int64) (bool, error) {
	result, err := r.db.Exec("DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}

	return affected > 0, nil
}

// Scan helpers

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (domain.Trade, error) {
	var trade domain.Trade
	var side, instrumentType string
	var entryDate int64
	var exitDate sql.NullInt64
	var exitPrice, pnl sql.NullFloat64
	var strategy, notes sql.NullString
	var isOpen int

	err := row.Scan(
		&trade.ID,
		&trade.Symbol,
		&side,
		&trade.Quantity,
		&trade.EntryPrice,
		&exitPrice,
		&entryDate,
		&exitDate,
		&pnl,
		&trade.Commission,
		&instrumentType,
		&strategy,
		&notes,
		&isOpen,
	)
	if err != nil {
		return trade, err
	}

	trade.Side = domain.TradeSide(side)
	trade.InstrumentType = domain.InstrumentType(instrumentType)
	trade.EntryDate = time.Unix(entryDate, 0).UTC()
	trade.IsOpen = isOpen != 0

	if exitDate.Valid {
		t := time.Unix(exitDate.Int64, 0).UTC()
		trade.ExitDate = &t
	}
	if exitPrice.Valid {
		trade.ExitPrice = &exitPrice.Float64
	}
	if pnl.Valid {
		trade.PNL = &pnl.Float64
	}
	if strategy.Valid {
		trade.Strategy = strategy.String
	}
	if notes.Valid {
		trade.Notes = notes.String
	}

	return trade, nil
}

func collectTrades(rows *sql.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat64Ptr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
