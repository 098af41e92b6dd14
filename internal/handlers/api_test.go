package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/export"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
	"sales-dashboard/internal/ui"
)

type stubFetcher struct {
	sales []models.Sale
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, _ source.Query) ([]models.Sale, error) {
	return f.sales, f.err
}

type stubStats map[string]any

func (s stubStats) Stats() map[string]any { return s }

var testViewOptions = ui.Options{
	Regions:   []string{"Brasil", "Centro-Oeste", "Nordeste", "Norte", "Sudeste", "Sul"},
	MinYear:   2020,
	MaxYear:   2023,
	TableRows: 50,
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func createTestSales() []models.Sale {
	return []models.Sale{
		{
			Product:      "Geladeira",
			Category:     "eletrodomesticos",
			Price:        2000,
			PurchaseDate: time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
			Seller:       "Bruno",
			State:        "RJ",
			Lat:          -22.25,
			Lon:          -42.66,
		},
		{
			Product:      "Livro",
			Category:     "livros",
			Price:        45.5,
			PurchaseDate: time.Date(2021, 2, 10, 0, 0, 0, 0, time.UTC),
			Seller:       "Ana",
			State:        "SP",
			Lat:          -22.19,
			Lon:          -48.79,
		},
		{
			Product:      "Mesa",
			Category:     "moveis",
			Price:        350,
			PurchaseDate: time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC),
			Seller:       "Ana",
			State:        "SP",
			Lat:          -22.19,
			Lon:          -48.79,
		},
	}
}

func createTestDashboard(fetcher services.Fetcher) *services.Dashboard {
	limits := models.FilterLimits{
		Regions:           testViewOptions.Regions,
		MinYear:           testViewOptions.MinYear,
		MaxYear:           testViewOptions.MaxYear,
		DefaultTopSellers: 5,
	}
	return services.NewDashboard(fetcher, limits, testLogger())
}

func newTestAPIHandlers(fetcher services.Fetcher) *APIHandlers {
	return NewAPIHandlers(createTestDashboard(fetcher), stubStats{"fetches": int64(3)}, testLogger())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	return env
}

func TestNewAPIHandlers(t *testing.T) {
	dashboard := createTestDashboard(&stubFetcher{})
	logger := slog.Default()
	handlers := NewAPIHandlers(dashboard, nil, logger)

	if handlers == nil {
		t.Fatal("NewAPIHandlers() returned nil")
	}
	if handlers.dashboard != dashboard {
		t.Error("NewAPIHandlers() should set dashboard field")
	}
	if handlers.logger != logger {
		t.Error("NewAPIHandlers() should set logger field")
	}
}

func TestAPIHandlers_HandleSales(t *testing.T) {
	handlers := newTestAPIHandlers(&stubFetcher{sales: createTestSales()})

	req := httptest.NewRequest(http.MethodGet, "/api/sales?region=sudeste&year=2021&seller=Ana", nil)
	w := httptest.NewRecorder()

	handlers.HandleSales(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != cacheMaxAge {
		t.Errorf("expected cache-control %q, got %q", cacheMaxAge, cc)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Fatal("expected success=true in response")
	}

	var data struct {
		Filters models.Filters `json:"filters"`
		Total   int            `json:"total"`
		Sales   []models.Sale  `json:"sales"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}

	if data.Total != 2 || len(data.Sales) != 2 {
		t.Errorf("expected 2 sales for Ana, got total=%d len=%d", data.Total, len(data.Sales))
	}
	if data.Filters.Region != "Sudeste" {
		t.Errorf("expected canonical region Sudeste, got %q", data.Filters.Region)
	}
	if !strings.Contains(string(env.Data), `"Data da Compra":"10/02/2021"`) {
		t.Error("sales should be encoded with the API field names and date format")
	}
}

func TestAPIHandlers_HandleReport(t *testing.T) {
	handlers := newTestAPIHandlers(&stubFetcher{sales: createTestSales()})

	req := httptest.NewRequest(http.MethodGet, "/api/report?top=3", nil)
	w := httptest.NewRecorder()

	handlers.HandleReport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var data struct {
		SellerOptions []string      `json:"seller_options"`
		Report        models.Report `json:"report"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}

	if data.Report.TotalSales != 3 {
		t.Errorf("expected 3 sales, got %d", data.Report.TotalSales)
	}
	if data.Report.TotalRevenue != 2395.5 {
		t.Errorf("expected revenue 2395.5, got %v", data.Report.TotalRevenue)
	}
	if data.Report.TopSellers != 3 {
		t.Errorf("expected top sellers 3, got %d", data.Report.TopSellers)
	}
	if len(data.SellerOptions) != 2 {
		t.Errorf("expected 2 seller options, got %v", data.SellerOptions)
	}
}

func TestAPIHandlers_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    *stubFetcher
		url        string
		wantStatus int
		wantCode   string
	}{
		{"unknown region", &stubFetcher{}, "/api/report?region=Marte", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"year out of range", &stubFetcher{}, "/api/report?year=1999", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"year not a number", &stubFetcher{}, "/api/sales?year=abc", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"upstream failure", &stubFetcher{err: fmt.Errorf("%w: status 500", source.ErrUpstream)}, "/api/sales", http.StatusBadGateway, "UPSTREAM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := newTestAPIHandlers(tt.fetcher)
			w := httptest.NewRecorder()

			if strings.HasPrefix(tt.url, "/api/sales") {
				handlers.HandleSales(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			} else {
				handlers.HandleReport(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			}

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			env := decodeEnvelope(t, w)
			if env.Success || env.Error.Code != tt.wantCode {
				t.Errorf("expected error code %s, got %+v", tt.wantCode, env)
			}
		})
	}
}

func TestAPIHandlers_HandleChart(t *testing.T) {
	handlers := newTestAPIHandlers(&stubFetcher{sales: createTestSales()})

	t.Run("known chart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/charts/revenue-categories", nil)
		req.SetPathValue("name", "revenue-categories")
		w := httptest.NewRecorder()

		handlers.HandleChart(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Errorf("expected content-type image/svg+xml, got %q", ct)
		}
		if !strings.HasPrefix(w.Body.String(), "<svg") {
			t.Error("expected an SVG document")
		}
	})

	t.Run("unknown chart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/charts/pie", nil)
		req.SetPathValue("name", "pie")
		w := httptest.NewRecorder()

		handlers.HandleChart(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}

func TestAPIHandlers_HandleExport(t *testing.T) {
	handlers := newTestAPIHandlers(&stubFetcher{sales: createTestSales()})

	req := httptest.NewRequest(http.MethodGet, "/export/sales.xlsx?seller=Bruno", nil)
	w := httptest.NewRecorder()

	handlers.HandleExport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
		t.Errorf("unexpected content-type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, exportFilename) {
		t.Errorf("unexpected content-disposition %q", cd)
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("failed to open spreadsheet: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(export.SalesSheet)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected header and one sale, got %d rows", len(rows))
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := newTestAPIHandlers(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handlers.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %q", data["status"])
	}
	if _, err := time.Parse(time.RFC3339, data["timestamp"]); err != nil {
		t.Errorf("invalid timestamp format: %v", err)
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := newTestAPIHandlers(&stubFetcher{sales: createTestSales()})

	handlers.HandleReport(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/report", nil))

	w := httptest.NewRecorder()
	handlers.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	env := decodeEnvelope(t, w)
	var data struct {
		Dashboard map[string]any `json:"dashboard"`
		Source    map[string]any `json:"source"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}

	if data.Dashboard["builds"] != float64(1) {
		t.Errorf("expected 1 build, got %v", data.Dashboard["builds"])
	}
	if data.Source["fetches"] != float64(3) {
		t.Errorf("expected source stats, got %v", data.Source)
	}
}
