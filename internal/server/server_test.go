package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
	"sales-dashboard/internal/ui"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(context.Context, source.Query) ([]models.Sale, error) {
	return []models.Sale{
		{Product: "Livro", Category: "livros", Price: 50, PurchaseDate: time.Date(2022, 4, 2, 0, 0, 0, 0, time.UTC), Seller: "Ana", State: "SP", Lat: -22.19, Lon: -48.79},
		{Product: "Mesa", Category: "moveis", Price: 300, PurchaseDate: time.Date(2022, 5, 9, 0, 0, 0, 0, time.UTC), Seller: "Bruno", State: "MG", Lat: -18.1, Lon: -44.38},
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer() *Server {
	cfg := config.Default()
	limits := models.FilterLimits{
		Regions:           cfg.Dashboard.Regions,
		MinYear:           cfg.Dashboard.MinYear,
		MaxYear:           cfg.Dashboard.MaxYear,
		DefaultTopSellers: cfg.Dashboard.DefaultTopSellers,
	}
	view := ui.Options{
		Regions:   cfg.Dashboard.Regions,
		MinYear:   cfg.Dashboard.MinYear,
		MaxYear:   cfg.Dashboard.MaxYear,
		TableRows: cfg.Dashboard.TableRows,
	}
	dashboard := services.NewDashboard(stubFetcher{}, limits, testLogger())
	return NewServer(dashboard, nil, view, testLogger())
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method         string
		path           string
		expectedStatus int
		contentType    string
	}{
		{http.MethodGet, "/", http.StatusOK, "text/html"},
		{http.MethodGet, "/health", http.StatusOK, "application/json"},
		{http.MethodGet, "/admin/stats", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/sales", http.StatusOK, "application/json"},
		{http.MethodGet, "/api/report?region=Sudeste&year=2022", http.StatusOK, "application/json"},
		{http.MethodGet, "/charts/sales-map", http.StatusOK, "image/svg+xml"},
		{http.MethodGet, "/charts/unknown", http.StatusNotFound, "application/json"},
		{http.MethodGet, "/export/sales.xlsx", http.StatusOK, "application/vnd.openxmlformats"},
		{http.MethodGet, "/sse/dashboard", http.StatusOK, "text/event-stream"},
		{http.MethodGet, "/nonexistent", http.StatusNotFound, ""},
		{http.MethodPost, "/api/sales", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			srv.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.contentType != "" && !strings.HasPrefix(w.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("expected content-type %q, got %q", tt.contentType, w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestGracefulServer_RunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = 2 * time.Second

	httpServer := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	gs := NewGracefulServer(httpServer, testLogger(), cfg)

	var hooks atomic.Int32
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		hooks.Add(1)
		return nil
	})
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		hooks.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if hooks.Load() != 2 {
		t.Errorf("expected 2 shutdown hooks to run, got %d", hooks.Load())
	}
}

func TestGracefulServer_HookError(t *testing.T) {
	cfg := config.Default()
	gs := NewGracefulServer(&http.Server{Addr: "127.0.0.1:0"}, testLogger(), cfg)

	hookErr := errors.New("close failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return hookErr })

	err := gs.shutdown(context.Background())
	if !errors.Is(err, hookErr) {
		t.Errorf("shutdown() error = %v, want %v", err, hookErr)
	}
}

func TestGracefulServer_ListenError(t *testing.T) {
	cfg := config.Default()
	gs := NewGracefulServer(&http.Server{Addr: "127.0.0.1:bad"}, testLogger(), cfg)

	if err := gs.Run(context.Background()); err == nil {
		t.Error("expected an error for an invalid address")
	}
}
