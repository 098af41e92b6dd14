package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/export"
)

const upstreamSales = `[
 {"Produto":"Geladeira","Categoria do Produto":"eletrodomesticos","Preço":2000,"Frete":80.5,"Data da Compra":"15/01/2021","Vendedor":"Bruno","Local da compra":"RJ","Avaliação da compra":5,"Tipo de pagamento":"boleto","Quantidade de parcelas":1,"lat":-22.25,"lon":-42.66},
 {"Produto":"Livro","Categoria do Produto":"livros","Preço":45.5,"Frete":5,"Data da Compra":"10/02/2021","Vendedor":"Ana","Local da compra":"SP","Avaliação da compra":4,"Tipo de pagamento":"cartao_credito","Quantidade de parcelas":2,"lat":-22.19,"lon":-48.79}
]`

// newUpstream serves a fixed sales list and points the configuration at it.
func newUpstream(t *testing.T) *atomic.Int32 {
	t.Helper()

	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, upstreamSales)
	}))
	t.Cleanup(ts.Close)

	t.Setenv("SOURCE_URL", ts.URL)
	t.Setenv("SOURCE_RETRIES", "0")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	return &calls
}

func TestApp_Handler(t *testing.T) {
	calls := newUpstream(t)

	a, err := newApp(io.Discard)
	require.NoError(t, err)
	defer a.client.Close()

	h := a.handler()

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/", http.StatusOK},
		{"/health", http.StatusOK},
		{"/api/report?region=Sudeste", http.StatusOK},
		{"/api/report?region=Marte", http.StatusBadRequest},
		{"/charts/revenue-map", http.StatusOK},
		{"/admin/stats", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}

	// "/" and "/charts/revenue-map" share one upstream query; the Sudeste
	// report is the second.
	assert.Equal(t, int32(2), calls.Load())
}

func TestExportCommand(t *testing.T) {
	newUpstream(t)
	out := filepath.Join(t.TempDir(), "vendas.xlsx")

	root := newRootCmd()
	root.SetArgs([]string{"export", "--region", "sudeste", "--year", "2021", "--seller", "Ana", "--out", out})
	root.SetErr(io.Discard)
	require.NoError(t, root.Execute())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SalesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Livro", rows[1][0])

	rows, err = f.GetRows(export.SellersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana", rows[1][0])
}

func TestExportCommand_Stdout(t *testing.T) {
	newUpstream(t)

	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetArgs([]string{"export", "--out", "-"})
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	require.NoError(t, root.Execute())

	f, err := excelize.OpenReader(&stdout)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SalesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportCommand_InvalidRegion(t *testing.T) {
	newUpstream(t)

	root := newRootCmd()
	root.SetArgs([]string{"export", "--region", "Marte", "--out", filepath.Join(t.TempDir(), "x.xlsx")})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown region")
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "export")

	var out bytes.Buffer
	root.SetArgs([]string{"--version"})
	root.SetOut(&out)
	require.NoError(t, root.Execute())
	assert.True(t, strings.Contains(out.String(), version))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.xlsx")
	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "data")
		return err
	}))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	failed := filepath.Join(dir, "failed.xlsx")
	writeErr := errors.New("disk full")
	err = writeFile(failed, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return writeErr
	})
	assert.ErrorIs(t, err, writeErr)
	_, statErr := os.Stat(failed)
	assert.True(t, os.IsNotExist(statErr), "partial file should be removed")

	err = writeFile(filepath.Join(dir, "missing", "x.xlsx"), func(io.Writer) error { return nil })
	assert.Error(t, err)
}
