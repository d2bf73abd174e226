// Package handlers provides the HTTP surface of the trade journal.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"tradejournal/internal/domain"
	"tradejournal/internal/modules/importer"
	"tradejournal/internal/modules/journal"
)

// maxUploadBytes caps CSV uploads at 5MB
const maxUploadBytes = 5 << 20

// Handler contains HTTP handlers for the journal API
type Handler struct {
	log      zerolog.Logger
	journal  *journal.Service
	importer *importer.Service
}

// NewHandler creates a new journal handler instance
func NewHandler(journalSvc *journal.Service, importerSvc *importer.Service, log zerolog.Logger) *Handler {
	return &Handler{
		log:      log.With().Str("handler", "journal").Logger(),
		journal:  journalSvc,
		importer: importerSvc,
	}
}

// HandleListTrades handles GET /api/trades.
// With both startDate and endDate query params the result is limited to
// trades entered in that range, inclusive on both bounds.
func (h *Handler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var trades []domain.Trade
	if start != nil && end != nil {
		trades, err = h.journal.GetTradesByDateRange(*start, *end)
	} else {
		trades, err = h.journal.GetAllTrades()
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch trades")
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch trades")
		return
	}

	if trades == nil {
		trades = []domain.Trade{}
	}
	h.writeJSON(w, http.StatusOK, trades)
}

// HandleGetTrade handles GET /api/trades/{id}
func (h *Handler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	trade, err := h.journal.GetTrade(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to fetch trade")
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch trade")
		return
	}
	if trade == nil {
		h.writeError(w, http.StatusNotFound, "Trade not found")
		return
	}

	h.writeJSON(w, http.StatusOK, trade)
}

// HandleCreateTrade handles POST /api/trades
func (h *Handler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var input domain.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input.Normalize()
	if fieldErrs := domain.ValidateInput(input); len(fieldErrs) > 0 {
		h.writeValidationErrors(w, fieldErrs)
		return
	}

	trade, err := h.journal.CreateTrade(input)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create trade")
		h.writeError(w, http.StatusInternalServerError, "Failed to create trade")
		return
	}

	h.writeJSON(w, http.StatusCreated, trade)
}

// HandleUpdateTrade handles PUT /api/trades/{id}
func (h *Handler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	var patch domain.TradePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch.ID = id

	trade, err := h.journal.UpdateTrade(patch)
	if errors.Is(err, journal.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Trade not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to update trade")
		h.writeError(w, http.StatusInternalServerError, "Failed to update trade")
		return
	}

	h.writeJSON(w, http.StatusOK, trade)
}

// HandleDeleteTrade handles DELETE /api/trades/{id}
func (h *Handler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tradeID(w, r)
	if !ok {
		return
	}

	deleted, err := h.journal.DeleteTrade(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete trade")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete trade")
		return
	}
	if !deleted {
		h.writeError(w, http.StatusNotFound, "Trade not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Trade deleted successfully"})
}

// HandleGetMetrics handles GET /api/metrics.
// startDate/endDate restrict the window; both must be present for the
// filter to apply, otherwise the whole ledger is aggregated.
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics, err := h.journal.GetTradingMetrics(start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute metrics")
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch metrics")
		return
	}

	h.writeJSON(w, http.StatusOK, metrics)
}

// HandleGetPerformance handles GET /api/performance
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRangeParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.journal.GetPerformance(start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute performance report")
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch performance")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// HandleImportCSV handles POST /api/trades/import. Expects a multipart
// form with a "csvFile" file part and an optional "broker" field
// naming the profile to use.
func (h *Handler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "No CSV file provided")
		return
	}

	file, header, err := r.FormFile("csvFile")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "No CSV file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		h.writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	broker := r.FormValue("broker")
	report, err := h.importer.ImportCSV(file, broker)

	var allFailed *importer.AllRowsFailedError
	switch {
	case errors.Is(err, importer.ErrEmptyFile):
		h.writeError(w, http.StatusBadRequest, "CSV file is empty")
		return
	case errors.As(err, &allFailed):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "All trades failed validation",
			"errors":  allFailed.Errors,
		})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("CSV import failed")
		h.writeError(w, http.StatusInternalServerError, "Failed to import CSV")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Successfully imported " + strconv.Itoa(report.Imported) + " trades",
		"batchId":      report.BatchID,
		"imported":     report.Imported,
		"skippedRows":  report.SkippedRows,
		"errors":       report.Errors,
		"errorDetails": report.ErrorDetails,
		"trades":       report.Trades,
	})
}

// tradeID parses the {id} URL param, writing the error response itself
func (h *Handler) tradeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.writeError(w, http.StatusBadRequest, "Invalid trade id")
		return 0, false
	}
	return id, true
}

// dateRangeParams parses optional startDate/endDate query params.
// Accepts RFC 3339 timestamps or bare dates; a bare endDate is taken as
// the end of that day so the range stays inclusive.
func dateRangeParams(r *http.Request) (*time.Time, *time.Time, error) {
	start, err := parseDateParam(r.URL.Query().Get("startDate"), false)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDateParam(r.URL.Query().Get("endDate"), true)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func parseDateParam(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.New("Invalid date: " + value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) writeValidationErrors(w http.ResponseWriter, fieldErrs []domain.FieldError) {
	h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"message": "Validation error",
		"errors":  fieldErrs,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
