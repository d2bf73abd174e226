package journal

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tradejournal/internal/domain"
)

// Service handles trade-related business logic.
//
// It is the single authority for P&L derivation and metric aggregation;
// repositories only store what the service decides.
type Service struct {
	log  zerolog.Logger
	repo Repository
}

// NewService creates a new journal service
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		log:  log.With().Str("service", "journal").Logger(),
		repo: repo,
	}
}

// CreateTrade stores a new trade, deriving realized P&L when the input
// describes a closed position. Assumes the caller already validated the
// input (see domain.ValidateInput); it never fails for well-formed input.
//
// P&L resolution order:
//  1. an explicitly supplied pnl is used verbatim (manual override)
//  2. exit price present and position not open: derived from prices
//  3. otherwise nil (open position, no realized P&L)
func (s *Service) CreateTrade(input domain.TradeInput) (domain.Trade, error) {
	input.Normalize()

	pnl := input.PNL
	if pnl == nil && input.ExitPrice != nil && !input.IsOpen {
		derived := domain.DerivePNL(input.Side, input.Quantity, input.EntryPrice, *input.ExitPrice, input.Commission)
		pnl = &derived
	}

	trade := domain.Trade{
		Symbol:         input.Symbol,
		Side:           input.Side,
		Quantity:       input.Quantity,
		EntryPrice:     input.EntryPrice,
		ExitPrice:      input.ExitPrice,
		EntryDate:      input.EntryDate,
		ExitDate:       input.ExitDate,
		PNL:            pnl,
		Commission:     input.Commission,
		InstrumentType: input.InstrumentType,
		Strategy:       input.Strategy,
		Notes:          input.Notes,
		IsOpen:         input.IsOpen,
	}

	created, err := s.repo.Create(trade)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("failed to create trade: %w", err)
	}

	s.log.Info().
		Int64("id", created.ID).
		Str("symbol", created.Symbol).
		Str("side", string(created.Side)).
		Bool("open", created.IsOpen).
		Msg("Trade created")

	return created, nil
}

// CreateTrades stores a batch of trades sequentially, in input order,
// assigning strictly increasing ids. The batch is not atomic: earlier
// insertions are kept if a later one fails.
func (s *Service) CreateTrades(inputs []domain.TradeInput) ([]domain.Trade, error) {
	created := make([]domain.Trade, 0, len(inputs))
	for i := range inputs {
		trade, err := s.CreateTrade(inputs[i])
		if err != nil {
			return created, fmt.Errorf("batch insert stopped at input %d: %w", i, err)
		}
		created = append(created, trade)
	}
	return created, nil
}

// GetTrade retrieves a single trade, or nil when the id does not exist
func (s *Service) GetTrade(id int64) (*domain.Trade, error) {
	return s.repo.Get(id)
}

// GetAllTrades returns all trades, most recent entry first
func (s *Service) GetAllTrades() ([]domain.Trade, error) {
	return s.repo.GetAll()
}

// GetTradesByDateRange returns trades entered within [start, end],
// inclusive on both bounds. Exit dates are irrelevant to inclusion.
func (s *Service) GetTradesByDateRange(start, end time.Time) ([]domain.Trade, error) {
	return s.repo.GetByDateRange(start, end)
}

// UpdateTrade merges a partial patch onto an existing trade and
// re-derives P&L when the patch supplies an exit price and the merged
// record has an entry price. An explicit patch pnl wins only when no
// derivation was triggered. Returns ErrNotFound for an unknown id;
// nothing is applied in that case.
//
// Setting isOpen back to true reopens the trade and resets pnl to nil,
// so a reopened position never carries a stale realized P&L.
func (s *Service) UpdateTrade(patch domain.TradePatch) (domain.Trade, error) {
	existing, err := s.repo.Get(patch.ID)
	if err != nil {
		return domain.Trade{}, fmt.Errorf("failed to load trade for update: %w", err)
	}
	if existing == nil {
		return domain.Trade{}, ErrNotFound
	}

	merged := *existing
	if patch.Symbol != nil {
		merged.Symbol = *patch.Symbol
	}
	if patch.Side != nil {
		merged.Side = *patch.Side
	}
	if patch.Quantity != nil {
		merged.Quantity = *patch.Quantity
	}
	if patch.EntryPrice != nil {
		merged.EntryPrice = *patch.EntryPrice
	}
	if patch.ExitPrice != nil {
		merged.ExitPrice = patch.ExitPrice
	}
	if patch.EntryDate != nil {
		merged.EntryDate = *patch.EntryDate
	}
	if patch.ExitDate != nil {
		merged.ExitDate = patch.ExitDate
	}
	if patch.Commission != nil {
		merged.Commission = *patch.Commission
	}
	if patch.InstrumentType != nil {
		merged.InstrumentType = *patch.InstrumentType
	}
	if patch.Strategy != nil {
		merged.Strategy = *patch.Strategy
	}
	if patch.Notes != nil {
		merged.Notes = *patch.Notes
	}
	if patch.IsOpen != nil {
		merged.IsOpen = *patch.IsOpen
	}

	derived := false
	if patch.ExitPrice != nil && merged.EntryPrice > 0 {
		pnl := domain.DerivePNL(merged.Side, merged.Quantity, merged.EntryPrice, *patch.ExitPrice, merged.Commission)
		merged.PNL = &pnl
		derived = true
	}
	if !derived && patch.PNL != nil {
		merged.PNL = patch.PNL
	}

	// Reopening clears realized P&L regardless of the above
	if merged.IsOpen {
		merged.PNL = nil
	}

	if err := s.repo.Update(merged); err != nil {
		return domain.Trade{}, err
	}

	s.log.Info().
		Int64("id", merged.ID).
		Str("symbol", merged.Symbol).
		Bool("open", merged.IsOpen).
		Msg("Trade updated")

	return merged, nil
}

// DeleteTrade removes a trade. Returns true if a record existed and was
// removed; deleting a nonexistent id is not an error.
func (s *Service) DeleteTrade(id int64) (bool, error) {
	deleted, err := s.repo.Delete(id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Int64("id", id).Msg("Trade deleted")
	}
	return deleted, nil
}

// GetTradingMetrics aggregates closed trades into summary statistics.
// When both bounds are given the ledger is first filtered by entry date
// (inclusive); otherwise the full ledger is used. Never fails beyond
// repository errors; an empty set yields zero-valued metrics.
func (s *Service) GetTradingMetrics(start, end *time.Time) (MetricsSummary, error) {
	trades, err := s.tradesInRange(start, end)
	if err != nil {
		return MetricsSummary{}, err
	}
	return ComputeMetrics(trades), nil
}

// GetPerformance builds the cumulative P&L report over closed trades
// in the optional date range.
func (s *Service) GetPerformance(start, end *time.Time) (PerformanceReport, error) {
	trades, err := s.tradesInRange(start, end)
	if err != nil {
		return PerformanceReport{}, err
	}
	return ComputePerformance(trades), nil
}

func (s *Service) tradesInRange(start, end *time.Time) ([]domain.Trade, error) {
	if start != nil && end != nil {
		return s.repo.GetByDateRange(*start, *end)
	}
	return s.repo.GetAll()
}

// SeedSampleTrades inserts a few demonstration trades. Used in dev mode
// with the in-memory backend so the dashboard has something to show.
func (s *Service) SeedSampleTrades() error {
	f := func(v float64) *float64 { return &v }
	ts := func(s string) time.Time { t, _ := time.Parse(time.RFC3339, s); return t }
	tp := func(s string) *time.Time { t := ts(s); return &t }

	samples := []domain.TradeInput{
		{
			Symbol: "AAPL", Side: domain.TradeSideLong, Quantity: 100,
			EntryPrice: 175.42, ExitPrice: f(178.91),
			EntryDate: ts("2024-12-15T09:30:00Z"), ExitDate: tp("2024-12-15T15:30:00Z"),
			Commission: 2.50, InstrumentType: domain.InstrumentStock,
			Strategy: "Momentum", Notes: "Good breakout above resistance with strong volume",
		},
		{
			Symbol: "TSLA", Side: domain.TradeSideShort, Quantity: 50,
			EntryPrice: 248.76, ExitPrice: f(245.32),
			EntryDate: ts("2024-12-14T10:15:00Z"), ExitDate: tp("2024-12-14T14:45:00Z"),
			Commission: 1.50, InstrumentType: domain.InstrumentStock,
			Strategy: "Reversal", Notes: "Failed to hold support level",
		},
		{
			Symbol: "SPY", Side: domain.TradeSideLong, Quantity: 5,
			EntryPrice: 2.45, ExitPrice: f(1.89),
			EntryDate: ts("2024-12-13T11:00:00Z"), ExitDate: tp("2024-12-13T16:00:00Z"),
			Commission: 5.00, InstrumentType: domain.InstrumentOption, PNL: f(-280.00),
			Strategy: "Breakout", Notes: "False breakout, cut losses quickly",
		},
	}

	for i := range samples {
		if _, err := s.CreateTrade(samples[i]); err != nil {
			return fmt.Errorf("failed to seed sample trades: %w", err)
		}
	}

	s.log.Info().Int("count", len(samples)).Msg("Seeded sample trades")
	return nil
}
