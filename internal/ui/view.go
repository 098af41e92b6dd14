// Package ui assembles what the dashboard page shows for one pipeline run.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/a-h/templ"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/format"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

const PageTitle = "DASHBOARD DE VENDAS"

// Tabs of the dashboard body, in display order.
const (
	TabRevenue = "receita"
	TabSales   = "quantidade"
	TabSellers = "vendedores"
)

type Options struct {
	Regions   []string
	MinYear   int
	MaxYear   int
	TableRows int
}

type SellerOption struct {
	Name     string
	Selected bool
}

type ChartView struct {
	Title string
	Src   templ.SafeURL
}

type Row struct {
	Product      string
	Category     string
	Price        string
	Freight      string
	Date         string
	Seller       string
	State        string
	Rating       string
	PaymentType  string
	Installments int
}

type View struct {
	Title   string
	Filters models.Filters
	Regions []string
	MinYear int
	MaxYear int
	// SliderYear is the year shown by the slider, also while the whole period is selected.
	SliderYear    int
	MinTop        int
	MaxTop        int
	SellerOptions []SellerOption

	RevenueTotal string
	SalesTotal   string

	Charts map[charts.Name]ChartView

	Rows      []Row
	TotalRows int

	GeneratedAt time.Time
}

// Build renders the charts of res and prepares the page model.
func Build(ctx context.Context, res *services.Result, opts Options) (*View, error) {
	rendered, err := charts.RenderAll(ctx, res.Report)
	if err != nil {
		return nil, fmt.Errorf("render charts: %w", err)
	}

	v := &View{
		Title:        PageTitle,
		Filters:      res.Filters,
		Regions:      opts.Regions,
		MinYear:      opts.MinYear,
		MaxYear:      opts.MaxYear,
		SliderYear:   res.Filters.Year,
		MinTop:       models.MinTopSellers,
		MaxTop:       models.MaxTopSellers,
		RevenueTotal: format.Number(res.Report.TotalRevenue, "R$"),
		SalesTotal:   format.Number(float64(res.Report.TotalSales), ""),
		Charts:       make(map[charts.Name]ChartView, len(rendered)),
		TotalRows:    len(res.Sales),
		GeneratedAt:  res.GeneratedAt,
	}
	if v.SliderYear < opts.MinYear || v.SliderYear > opts.MaxYear {
		v.SliderYear = opts.MinYear
	}

	for _, name := range res.SellerOptions {
		v.SellerOptions = append(v.SellerOptions, SellerOption{
			Name:     name,
			Selected: slices.Contains(res.Filters.Sellers, name),
		})
	}

	for name, c := range rendered {
		v.Charts[name] = ChartView{Title: c.Title, Src: templ.SafeURL(c.DataURI())}
	}

	limit := min(len(res.Sales), max(opts.TableRows, 0))
	v.Rows = make([]Row, 0, limit)
	for _, s := range res.Sales[:limit] {
		v.Rows = append(v.Rows, Row{
			Product:      s.Product,
			Category:     s.Category,
			Price:        fmt.Sprintf("%.2f", s.Price),
			Freight:      fmt.Sprintf("%.2f", s.Freight),
			Date:         s.PurchaseDate.Format(models.DateLayout),
			Seller:       s.Seller,
			State:        s.State,
			Rating:       fmt.Sprintf("%.0f", s.Rating),
			PaymentType:  s.PaymentType,
			Installments: s.Installments,
		})
	}

	return v, nil
}

// Chart looks up a rendered chart by name for the templates.
func (v *View) Chart(name string) ChartView {
	return v.Charts[charts.Name(name)]
}

// ExportURL downloads the spreadsheet for the current filters.
func (v *View) ExportURL() string {
	return "/export/sales.xlsx?" + v.Filters.Query().Encode()
}

// Signals is the datastar signal set for the page.
func (v *View) Signals() (string, error) {
	sellers := v.Filters.Sellers
	if sellers == nil {
		sellers = []string{}
	}

	b, err := json.Marshal(map[string]any{
		"region":       v.Filters.Region,
		"allYears":     v.Filters.AllYears,
		"year":         v.SliderYear,
		"sellers":      sellers,
		"topSellers":   v.Filters.TopSellers,
		"revenueTotal": v.RevenueTotal,
		"salesTotal":   v.SalesTotal,
		"_tab":         TabRevenue,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UpdateSignals holds the signals patched after every rebuild: the
// reconciled filters and the metric values.
func (v *View) UpdateSignals() ([]byte, error) {
	sellers := v.Filters.Sellers
	if sellers == nil {
		sellers = []string{}
	}
	return json.Marshal(map[string]any{
		"region":       v.Filters.Region,
		"sellers":      sellers,
		"topSellers":   v.Filters.TopSellers,
		"revenueTotal": v.RevenueTotal,
		"salesTotal":   v.SalesTotal,
	})
}
