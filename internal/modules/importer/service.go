package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tradejournal/internal/domain"
)

const (
	// maxRejectionSamples caps the error list returned when every row
	// fails and the whole upload is rejected.
	maxRejectionSamples = 10
	// maxReportedErrors caps per-row error details on a partial success
	maxReportedErrors = 5
)

// Ledger is the slice of the journal service an import needs
type Ledger interface {
	CreateTrade(input domain.TradeInput) (domain.Trade, error)
}

// RowError ties a failure to its 1-based row position in the file
// (header counted as row 1) and carries the raw row for diagnosis.
type RowError struct {
	Row   int               `json:"row"`
	Error string            `json:"error"`
	Data  map[string]string `json:"data"`
}

// AllRowsFailedError is returned when no row in the upload survived
// normalization and validation. It carries a capped sample of the
// per-row failures so the caller can show the user what went wrong.
type AllRowsFailedError struct {
	Total  int
	Errors []RowError
}

func (e *AllRowsFailedError) Error() string {
	return fmt.Sprintf("all %d trades failed validation", e.Total)
}

// Report summarizes one import batch: partial success is normal, so a
// report may carry both imported trades and row errors.
type Report struct {
	BatchID      string         `json:"batchId"`
	Imported     int            `json:"imported"`
	SkippedRows  int            `json:"skippedRows"`
	Errors       int            `json:"errors"`
	ErrorDetails []RowError     `json:"errorDetails"`
	Trades       []domain.Trade `json:"trades"`
}

// Service turns broker CSV uploads into journal trades
type Service struct {
	log    zerolog.Logger
	ledger Ledger
}

// NewService creates a new import service
func NewService(ledger Ledger, log zerolog.Logger) *Service {
	return &Service{
		log:    log.With().Str("service", "importer").Logger(),
		ledger: ledger,
	}
}

// ImportCSV parses, normalizes and stores one uploaded CSV. Rows are
// processed independently: bad rows are collected as errors while good
// rows are stored, so one malformed line never sinks the upload. Only
// when every row fails is the whole batch rejected with
// *AllRowsFailedError.
//
// Row numbers in errors are the 1-based file positions (the header is
// row 1). Rows dropped for a column-count mismatch are tallied in
// SkippedRows and get no error entry.
func (s *Service) ImportCSV(r io.Reader, broker string) (*Report, error) {
	parsed, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}

	profile := ProfileFor(broker)
	batchID := uuid.New().String()

	report := &Report{
		BatchID:     batchID,
		SkippedRows: parsed.SkippedRows,
	}

	var rowErrors []RowError
	for _, row := range parsed.Rows {
		input, rowErr := s.normalizeRow(row.Values, profile)
		if rowErr != "" {
			rowErrors = append(rowErrors, RowError{Row: row.Number, Error: rowErr, Data: row.Values})
			continue
		}

		trade, err := s.ledger.CreateTrade(input)
		if err != nil {
			return nil, fmt.Errorf("failed to store imported trade: %w", err)
		}
		report.Trades = append(report.Trades, trade)
	}

	report.Imported = len(report.Trades)
	report.Errors = len(rowErrors)

	if len(rowErrors) > 0 && report.Imported == 0 {
		return nil, &AllRowsFailedError{
			Total:  len(rowErrors),
			Errors: capErrors(rowErrors, maxRejectionSamples),
		}
	}
	report.ErrorDetails = capErrors(rowErrors, maxReportedErrors)

	s.log.Info().
		Str("batch_id", batchID).
		Str("broker", profile.Name).
		Int("imported", report.Imported).
		Int("errors", report.Errors).
		Int("skipped_rows", report.SkippedRows).
		Msg("CSV import finished")

	return report, nil
}

// normalizeRow runs one row through the profile and the validator,
// flattening all failures into a single message.
func (s *Service) normalizeRow(row map[string]string, profile Profile) (domain.TradeInput, string) {
	candidate := Normalize(row, profile)

	input := candidate.Input
	// Absence of an exit price means the position is still open
	input.IsOpen = input.ExitPrice == nil

	fieldErrs := candidate.Errors
	fieldErrs = append(fieldErrs, domain.ValidateInput(input)...)
	if len(fieldErrs) == 0 {
		return input, ""
	}

	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = fe.Error()
	}
	return domain.TradeInput{}, strings.Join(msgs, "; ")
}

func capErrors(errs []RowError, limit int) []RowError {
	if len(errs) > limit {
		return errs[:limit]
	}
	return errs
}
