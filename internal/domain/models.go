// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// TradeSide represents the position direction (LONG or SHORT)
type TradeSide string

const (
	TradeSideLong  TradeSide = "LONG"
	TradeSideShort TradeSide = "SHORT"
)

// IsValid checks if the trade side is valid
func (ts TradeSide) IsValid() bool {
	return ts == TradeSideLong || ts == TradeSideShort
}

// Multiplier returns the P&L sign multiplier for the side.
// A long position profits when price rises, a short when it falls.
func (ts TradeSide) Multiplier() float64 {
	if ts == TradeSideShort {
		return -1
	}
	return 1
}

// SideFromToken normalizes a broker side token to a TradeSide.
// Recognized buy-equivalents map to LONG, sell-equivalents to SHORT;
// anything else is an error for the caller to surface.
func SideFromToken(value string) (TradeSide, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "BUY", "LONG", "B", "L":
		return TradeSideLong, nil
	case "SELL", "SHORT", "S", "SH":
		return TradeSideShort, nil
	default:
		return "", fmt.Errorf("invalid side value: %q (must be BUY/SELL or LONG/SHORT)", value)
	}
}

// InstrumentType represents the traded instrument class
type InstrumentType string

const (
	InstrumentStock   InstrumentType = "stock"
	InstrumentOption  InstrumentType = "option"
	InstrumentFutures InstrumentType = "futures"
	InstrumentForex   InstrumentType = "forex"
	InstrumentCrypto  InstrumentType = "crypto"
)

// IsValid checks if the instrument type is one of the known classes
func (it InstrumentType) IsValid() bool {
	switch it {
	case InstrumentStock, InstrumentOption, InstrumentFutures, InstrumentForex, InstrumentCrypto:
		return true
	default:
		return false
	}
}

// TradeInput is a producer-validated trade record prior to storage.
// ExitPrice, ExitDate and PNL are pointers: absence means the position
// may still be open and no realized P&L exists.
type TradeInput struct {
	Symbol         string         `json:"symbol"`
	Side           TradeSide      `json:"side"`
	Quantity       float64        `json:"quantity"`
	EntryPrice     float64        `json:"entryPrice"`
	ExitPrice      *float64       `json:"exitPrice,omitempty"`
	EntryDate      time.Time      `json:"entryDate"`
	ExitDate       *time.Time     `json:"exitDate,omitempty"`
	Commission     float64        `json:"commission"`
	InstrumentType InstrumentType `json:"instrumentType"`
	Strategy       string         `json:"strategy,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	IsOpen         bool           `json:"isOpen"`
	PNL            *float64       `json:"pnl,omitempty"` // manual override; normally derived
}

// Normalize uppercases the symbol and defaults the instrument type
func (in *TradeInput) Normalize() {
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.InstrumentType == "" {
		in.InstrumentType = InstrumentStock
	}
}

// Trade is the stored journal entry. PNL is nil exactly when the trade
// has no realized exit (IsOpen or no exit price).
type Trade struct {
	ID             int64          `json:"id"`
	Symbol         string         `json:"symbol"`
	Side           TradeSide      `json:"side"`
	Quantity       float64        `json:"quantity"`
	EntryPrice     float64        `json:"entryPrice"`
	ExitPrice      *float64       `json:"exitPrice"`
	EntryDate      time.Time      `json:"entryDate"`
	ExitDate       *time.Time     `json:"exitDate"`
	PNL            *float64       `json:"pnl"`
	Commission     float64        `json:"commission"`
	InstrumentType InstrumentType `json:"instrumentType"`
	Strategy       string         `json:"strategy"`
	Notes          string         `json:"notes"`
	IsOpen         bool           `json:"isOpen"`
}

// IsClosed reports whether the trade contributes to metrics
func (t *Trade) IsClosed() bool {
	return !t.IsOpen && t.PNL != nil
}

// TradePatch is a partial update applied to an existing trade.
// Nil fields are left untouched.
type TradePatch struct {
	ID             int64           `json:"id"`
	Symbol         *string         `json:"symbol,omitempty"`
	Side           *TradeSide      `json:"side,omitempty"`
	Quantity       *float64        `json:"quantity,omitempty"`
	EntryPrice     *float64        `json:"entryPrice,omitempty"`
	ExitPrice      *float64        `json:"exitPrice,omitempty"`
	EntryDate      *time.Time      `json:"entryDate,omitempty"`
	ExitDate       *time.Time      `json:"exitDate,omitempty"`
	Commission     *float64        `json:"commission,omitempty"`
	InstrumentType *InstrumentType `json:"instrumentType,omitempty"`
	Strategy       *string         `json:"strategy,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	IsOpen         *bool           `json:"isOpen,omitempty"`
	PNL            *float64        `json:"pnl,omitempty"`
}

// DerivePNL computes realized profit/loss for a closed position,
// net of commission.
func DerivePNL(side TradeSide, quantity, entryPrice, exitPrice, commission float64) float64 {
	return (exitPrice-entryPrice)*side.Multiplier()*quantity - commission
}
