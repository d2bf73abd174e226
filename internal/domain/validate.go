package domain

import "fmt"

// FieldError describes a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateInput checks TradeInput constraints and returns all violations.
// It is pure: the input is not mutated and no error aborts the scan.
func ValidateInput(in TradeInput) []FieldError {
	var errs []FieldError

	if in.Symbol == "" {
		errs = append(errs, FieldError{Field: "symbol", Message: "symbol is required"})
	}
	if !in.Side.IsValid() {
		errs = append(errs, FieldError{Field: "side", Message: "side must be LONG or SHORT"})
	}
	if in.Quantity <= 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must be positive"})
	}
	if in.EntryPrice <= 0 {
		errs = append(errs, FieldError{Field: "entryPrice", Message: "entry price must be positive"})
	}
	if in.ExitPrice != nil && *in.ExitPrice <= 0 {
		errs = append(errs, FieldError{Field: "exitPrice", Message: "exit price must be positive"})
	}
	if in.EntryDate.IsZero() {
		errs = append(errs, FieldError{Field: "entryDate", Message: "entry date is required"})
	}
	if in.Commission < 0 {
		errs = append(errs, FieldError{Field: "commission", Message: "commission cannot be negative"})
	}
	if in.InstrumentType != "" && !in.InstrumentType.IsValid() {
		errs = append(errs, FieldError{Field: "instrumentType", Message: "unknown instrument type"})
	}
	if in.IsOpen && in.PNL != nil {
		errs = append(errs, FieldError{Field: "pnl", Message: "open positions cannot carry a realized pnl"})
	}

	return errs
}
