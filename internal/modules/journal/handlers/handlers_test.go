package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradejournal/internal/domain"
	"tradejournal/internal/modules/importer"
	"tradejournal/internal/modules/journal"
)

func newTestRouter(t *testing.T) (http.Handler, *journal.Service) {
	t.Helper()

	log := zerolog.New(nil).Level(zerolog.Disabled)
	journalSvc := journal.NewService(journal.NewMemoryRepository(), log)
	importerSvc := importer.NewService(journalSvc, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewHandler(journalSvc, importerSvc, log).RegisterRoutes(r)
	})
	return r, journalSvc
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validTradeBody() map[string]interface{} {
	return map[string]interface{}{
		"symbol":     "AAPL",
		"side":       "LONG",
		"quantity":   100,
		"entryPrice": 175.42,
		"exitPrice":  178.91,
		"entryDate":  "2024-12-15T09:30:00Z",
		"exitDate":   "2024-12-15T15:30:00Z",
		"commission": 2.50,
	}
}

func TestHandleCreateTrade(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/trades", validTradeBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var trade domain.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trade))
	assert.Equal(t, int64(1), trade.ID)
	require.NotNil(t, trade.PNL)
	assert.InDelta(t, 346.50, *trade.PNL, 0.001)
}

func TestHandleCreateTrade_ValidationErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	body := validTradeBody()
	body["quantity"] = 0
	delete(body, "symbol")

	rec := doJSON(t, router, http.MethodPost, "/api/trades", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string              `json:"message"`
		Errors  []domain.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation error", resp.Message)
	assert.Len(t, resp.Errors, 2)
}

func TestHandleCreateTrade_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/trades", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetTrade_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/trades/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetTrade_InvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/trades/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListTrades_DateRangeFilter(t *testing.T) {
	router, svc := newTestRouter(t)
	require.NoError(t, svc.SeedSampleTrades())

	rec := doJSON(t, router, http.MethodGet, "/api/trades", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var all []domain.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	// Only the 2024-12-14 TSLA trade falls in this window
	rec = doJSON(t, router, http.MethodGet, "/api/trades?startDate=2024-12-14&endDate=2024-12-14", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ranged []domain.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranged))
	require.Len(t, ranged, 1)
	assert.Equal(t, "TSLA", ranged[0].Symbol)
}

func TestHandleListTrades_InvalidDate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/trades?startDate=tomorrow&endDate=2024-12-14", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateTrade(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/trades", map[string]interface{}{
		"symbol":     "NVDA",
		"side":       "LONG",
		"quantity":   10,
		"entryPrice": 500,
		"entryDate":  "2024-12-16T09:30:00Z",
		"isOpen":     true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/trades/1", map[string]interface{}{
		"exitPrice": 510.0,
		"isOpen":    false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var trade domain.Trade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trade))
	require.NotNil(t, trade.PNL)
	assert.InDelta(t, 100.0, *trade.PNL, 0.001)
	assert.False(t, trade.IsOpen)
}

func TestHandleUpdateTrade_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/trades/77", map[string]interface{}{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDeleteTrade(t *testing.T) {
	router, svc := newTestRouter(t)
	require.NoError(t, svc.SeedSampleTrades())

	rec := doJSON(t, router, http.MethodDelete, "/api/trades/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/trades/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetMetrics(t *testing.T) {
	router, svc := newTestRouter(t)
	require.NoError(t, svc.SeedSampleTrades())

	rec := doJSON(t, router, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 3.0, m["totalTrades"])
	assert.InDelta(t, 66.667, m["winRate"].(float64), 0.01)
	assert.InDelta(t, 1.846, m["profitFactor"].(float64), 0.001)
}

func TestHandleGetMetrics_InfiniteProfitFactorIsNull(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/trades", validTradeBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Nil(t, m["profitFactor"])
}

func TestHandleGetPerformance(t *testing.T) {
	router, svc := newTestRouter(t)
	require.NoError(t, svc.SeedSampleTrades())

	rec := doJSON(t, router, http.MethodGet, "/api/performance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report journal.PerformanceReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.EquityCurve, 3)
	assert.InDelta(t, 237.00, report.EquityCurve[2].Value, 0.001)
}

func multipartCSV(t *testing.T, filename, content, broker string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("csvFile", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("broker", broker))
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestHandleImportCSV(t *testing.T) {
	router, _ := newTestRouter(t)

	csv := strings.Join([]string{
		"Symbol,Side,Quantity,EntryPrice,ExitPrice,EntryDate,Commission",
		"AAPL,LONG,100,175.42,178.91,2024-12-15,2.50",
		"BAD,XYZ,1,10.00,11.00,2024-12-15,0",
	}, "\n")

	body, contentType := multipartCSV(t, "trades.csv", csv, "generic")
	req := httptest.NewRequest(http.MethodPost, "/api/trades/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message      string              `json:"message"`
		Imported     int                 `json:"imported"`
		Errors       int                 `json:"errors"`
		ErrorDetails []importer.RowError `json:"errorDetails"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Successfully imported 1 trades", resp.Message)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Errors)
	require.Len(t, resp.ErrorDetails, 1)
	assert.Equal(t, 3, resp.ErrorDetails[0].Row)
}

func TestHandleImportCSV_AllRowsRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	csv := "Symbol,Side,Quantity,EntryPrice,EntryDate\nBAD,XYZ,1,10.00,2024-12-15\n"
	body, contentType := multipartCSV(t, "trades.csv", csv, "generic")

	req := httptest.NewRequest(http.MethodPost, "/api/trades/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "All trades failed validation")
}

func TestHandleImportCSV_RejectsNonCSVFilename(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartCSV(t, "trades.xlsx", "Symbol\nAAPL\n", "generic")
	req := httptest.NewRequest(http.MethodPost, "/api/trades/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleImportCSV_MissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("broker", "generic"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/trades/import", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
