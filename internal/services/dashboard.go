package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/source"
)

// Fetcher retrieves the raw sales for one region/year selection.
type Fetcher interface {
	Fetch(ctx context.Context, q source.Query) ([]models.Sale, error)
}

// Result is one full run of the dashboard pipeline.
type Result struct {
	Filters models.Filters
	// SellerOptions are the sellers present before the seller filter is applied.
	SellerOptions []string
	Sales         []models.Sale
	Report        *models.Report
	GeneratedAt   time.Time
}

type Dashboard struct {
	fetcher Fetcher
	limits  models.FilterLimits
	logger  *slog.Logger

	builds       atomic.Int64
	failures     atomic.Int64
	lastRecords  atomic.Int64
	lastBuildDur atomic.Int64
}

func NewDashboard(fetcher Fetcher, limits models.FilterLimits, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		fetcher: fetcher,
		limits:  limits,
		logger:  logger,
	}
}

// Build fetches the sales for the filters, applies the seller allow-list and
// computes every derived table.
func (d *Dashboard) Build(ctx context.Context, filters models.Filters) (_ *Result, err error) {
	start := time.Now()
	d.builds.Add(1)

	ctx, span := observability.StartSpan(ctx, "dashboard.build")
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.End(ctx, d.logger)
	}()

	f, err := filters.Normalize(d.limits)
	if err != nil {
		d.failures.Add(1)
		return nil, err
	}
	span.SetTag("region", f.Region)
	span.SetTag("year", strconv.Itoa(f.UpstreamYear()))

	sales, err := d.fetcher.Fetch(ctx, source.Query{
		Region: f.UpstreamRegion(),
		Year:   f.UpstreamYear(),
	})
	if err != nil {
		d.failures.Add(1)
		return nil, fmt.Errorf("fetch sales: %w", err)
	}

	options := Sellers(sales)
	f.Sellers = reconcileSellers(f.Sellers, options)
	filtered := FilterSellers(sales, f.Sellers)

	report := Aggregate(filtered, f.TopSellers)

	duration := time.Since(start)
	d.lastRecords.Store(int64(len(filtered)))
	d.lastBuildDur.Store(int64(duration))

	d.logger.DebugContext(ctx, "dashboard built",
		"region", f.Region,
		"all_years", f.AllYears,
		"year", f.Year,
		"sellers", len(f.Sellers),
		"records", len(filtered),
		"duration", duration,
	)

	return &Result{
		Filters:       f,
		SellerOptions: options,
		Sales:         filtered,
		Report:        report,
		GeneratedAt:   time.Now(),
	}, nil
}

// reconcileSellers drops selected sellers that the fetched data does not
// contain, preserving the selection order.
func reconcileSellers(selected, options []string) []string {
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		if slices.Contains(options, s) && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func (d *Dashboard) Stats() map[string]any {
	return map[string]any{
		"builds":            d.builds.Load(),
		"failures":          d.failures.Load(),
		"last_record_count": d.lastRecords.Load(),
		"last_build_time":   time.Duration(d.lastBuildDur.Load()).String(),
		"regions":           len(d.limits.Regions),
		"year_range":        fmt.Sprintf("%d-%d", d.limits.MinYear, d.limits.MaxYear),
	}
}
