// Package charts turns dashboard tables into SVG charts.
package charts

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

type Name string

const (
	RevenueMap        Name = "revenue-map"
	RevenueMonthly    Name = "revenue-monthly"
	RevenueStates     Name = "revenue-states"
	RevenueCategories Name = "revenue-categories"
	SalesMap          Name = "sales-map"
	SalesMonthly      Name = "sales-monthly"
	SalesStates       Name = "sales-states"
	SalesCategories   Name = "sales-categories"
	SellersRevenue    Name = "sellers-revenue"
	SellersCount      Name = "sellers-count"
)

const maxRenderWorkers = 4

var names = []Name{
	RevenueMap, RevenueMonthly, RevenueStates, RevenueCategories,
	SalesMap, SalesMonthly, SalesStates, SalesCategories,
	SellersRevenue, SellersCount,
}

// Names lists every chart the dashboard shows.
func Names() []Name {
	return slices.Clone(names)
}

func Valid(name Name) bool {
	return slices.Contains(names, name)
}

type Chart struct {
	Name  Name
	Title string
	SVG   []byte
}

// DataURI embeds the chart so it can be used as an image source.
func (c Chart) DataURI() string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(c.SVG)
}

// Render draws one chart of the report.
func Render(name Name, report *models.Report) (Chart, error) {
	title := Title(name, report.TopSellers)

	var (
		svg []byte
		err error
	)
	switch name {
	case RevenueMap:
		svg, err = geoChart(title, revenuePoints(report.RevenueByState), revenueDotMax)
	case RevenueMonthly:
		svg, err = lineChart(title, "Receita", report.MonthlyRevenue, revenueFormatter)
	case RevenueStates:
		svg, err = barChart(title, stateRevenueBars(report.TopStatesByRevenue), revenueFormatter)
	case RevenueCategories:
		svg, err = barChart(title, categoryRevenueBars(report.RevenueByCategory), revenueFormatter)
	case SalesMap:
		svg, err = geoChart(title, countPoints(report.CountByState), countDotMax)
	case SalesMonthly:
		svg, err = lineChart(title, "Quantidade de Vendas", report.MonthlyCount, countFormatter)
	case SalesStates:
		svg, err = barChart(title, stateCountBars(report.TopStatesByCount), countFormatter)
	case SalesCategories:
		svg, err = barChart(title, categoryCountBars(report.CountByCategory), countFormatter)
	case SellersRevenue:
		svg, err = barChart(title, sellerRevenueBars(report.TopSellersByRevenue), revenueFormatter)
	case SellersCount:
		svg, err = barChart(title, sellerCountBars(report.TopSellersByCount), countFormatter)
	default:
		return Chart{}, fmt.Errorf("unknown chart %q", name)
	}
	if err != nil {
		return Chart{}, fmt.Errorf("render %s: %w", name, err)
	}

	return Chart{Name: name, Title: title, SVG: svg}, nil
}

// RenderAll draws every chart of the report concurrently.
func RenderAll(ctx context.Context, report *models.Report) (map[Name]Chart, error) {
	results := make([]Chart, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRenderWorkers)

	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := Render(name, report)
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[Name]Chart, len(results))
	for _, c := range results {
		out[c.Name] = c
	}
	return out, nil
}

func Title(name Name, topSellers int) string {
	switch name {
	case RevenueMap:
		return "Receita por estado"
	case RevenueMonthly:
		return "Receita Mensal"
	case RevenueStates:
		return "Top estados (receita)"
	case RevenueCategories:
		return "Receita por Categoria"
	case SalesMap:
		return "Quantidade de Vendas por Estado"
	case SalesMonthly:
		return "Quantidade de Vendas por Mês"
	case SalesStates:
		return "Estados com maior Qtde. de Vendas"
	case SalesCategories:
		return "Qtde de Vendas por Categoria"
	case SellersRevenue:
		return fmt.Sprintf("Top %d vendedores (receita)", topSellers)
	case SellersCount:
		return fmt.Sprintf("Top %d vendedores (quantidade de vendas)", topSellers)
	}
	return string(name)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func render(c renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.SVG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
