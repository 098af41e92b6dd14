package ui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

var testOptions = Options{
	Regions:   []string{"Brasil", "Centro-Oeste", "Nordeste", "Norte", "Sudeste", "Sul"},
	MinYear:   2020,
	MaxYear:   2023,
	TableRows: 2,
}

func testResult() *services.Result {
	sales := []models.Sale{
		{Product: "Livro", Category: "livros", Price: 50, PurchaseDate: time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC), Seller: "Ana", State: "SP", Rating: 5, Lat: -22.19, Lon: -48.79},
		{Product: "Geladeira", Category: "eletrodomesticos", Price: 2000, PurchaseDate: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), Seller: "Bruno", State: "RJ", Rating: 4, Lat: -22.25, Lon: -42.66},
		{Product: "Mesa", Category: "moveis", Price: 1500, PurchaseDate: time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC), Seller: "Ana", State: "SP", Rating: 3, Lat: -22.19, Lon: -48.79},
	}
	filters := models.Filters{Region: "Sudeste", Year: 2021, Sellers: []string{"Ana"}, TopSellers: 5}

	return &services.Result{
		Filters:       filters,
		SellerOptions: []string{"Ana", "Bruno"},
		Sales:         sales,
		Report:        services.Aggregate(sales, filters.TopSellers),
		GeneratedAt:   time.Now(),
	}
}

func TestBuild(t *testing.T) {
	v, err := Build(context.Background(), testResult(), testOptions)
	require.NoError(t, err)

	assert.Equal(t, PageTitle, v.Title)
	assert.Equal(t, "R$ 3.55 mil", v.RevenueTotal)
	assert.Equal(t, "3.00", v.SalesTotal)
	assert.Equal(t, 2021, v.SliderYear)

	assert.Equal(t, []SellerOption{{Name: "Ana", Selected: true}, {Name: "Bruno"}}, v.SellerOptions)

	require.Len(t, v.Charts, len(charts.Names()))
	for _, name := range charts.Names() {
		c := v.Chart(string(name))
		assert.True(t, strings.HasPrefix(string(c.Src), "data:image/svg+xml;base64,"), name)
		assert.NotEmpty(t, c.Title, name)
	}
}

func TestBuild_TableRows(t *testing.T) {
	v, err := Build(context.Background(), testResult(), testOptions)
	require.NoError(t, err)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, 3, v.TotalRows)
	assert.Equal(t, Row{
		Product:  "Livro",
		Category: "livros",
		Price:    "50.00",
		Freight:  "0.00",
		Date:     "10/01/2021",
		Seller:   "Ana",
		State:    "SP",
		Rating:   "5",
	}, v.Rows[0])
}

func TestBuild_SliderYearDuringAllPeriod(t *testing.T) {
	res := testResult()
	res.Filters.AllYears = true
	res.Filters.Year = 0

	v, err := Build(context.Background(), res, testOptions)
	require.NoError(t, err)
	assert.Equal(t, 2020, v.SliderYear)
}

func TestView_Signals(t *testing.T) {
	v, err := Build(context.Background(), testResult(), testOptions)
	require.NoError(t, err)

	raw, err := v.Signals()
	require.NoError(t, err)

	var signals map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &signals))
	assert.Equal(t, "Sudeste", signals["region"])
	assert.Equal(t, false, signals["allYears"])
	assert.Equal(t, float64(2021), signals["year"])
	assert.Equal(t, []any{"Ana"}, signals["sellers"])
	assert.Equal(t, TabRevenue, signals["_tab"])

	update, err := v.UpdateSignals()
	require.NoError(t, err)
	assert.JSONEq(t, `{"region":"Sudeste","sellers":["Ana"],"topSellers":5,"revenueTotal":"R$ 3.55 mil","salesTotal":"3.00"}`, string(update))
}

func TestView_ExportURL(t *testing.T) {
	v, err := Build(context.Background(), testResult(), testOptions)
	require.NoError(t, err)

	assert.Equal(t, "/export/sales.xlsx?region=Sudeste&seller=Ana&top=5&year=2021", v.ExportURL())
}
