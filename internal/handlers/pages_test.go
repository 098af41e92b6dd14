package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sales-dashboard/internal/source"
)

func TestPageHandlers_HandleDashboard(t *testing.T) {
	handlers := NewPageHandlers(createTestDashboard(&stubFetcher{sales: createTestSales()}), testViewOptions, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/?region=Sul&seller=Bruno", nil)
	w := httptest.NewRecorder()

	handlers.HandleDashboard(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("unexpected content-type %q", ct)
	}

	html := w.Body.String()
	expected := []string{
		"<h1>DASHBOARD DE VENDAS</h1>",
		`<option value="Sul" selected>Sul</option>`,
		`<option value="Bruno" selected>Bruno</option>`,
		"R$ 2.00 mil",
		"Receita Total",
		"Quantidade Vendas",
		"Quantidade de Vendedores",
	}
	for _, content := range expected {
		if !strings.Contains(html, content) {
			t.Errorf("expected page to contain %q", content)
		}
	}
}

func TestPageHandlers_HandleDashboard_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    *stubFetcher
		url        string
		wantStatus int
	}{
		{"invalid year", &stubFetcher{}, "/?year=1990", http.StatusBadRequest},
		{"upstream failure", &stubFetcher{err: fmt.Errorf("%w: timeout", source.ErrUpstream)}, "/", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := NewPageHandlers(createTestDashboard(tt.fetcher), testViewOptions, testLogger())
			w := httptest.NewRecorder()

			handlers.HandleDashboard(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
