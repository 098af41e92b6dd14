package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

const topStates = 5

// Sellers lists the distinct sellers in order of first appearance.
func Sellers(sales []models.Sale) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range sales {
		if _, ok := seen[s.Seller]; ok {
			continue
		}
		seen[s.Seller] = struct{}{}
		out = append(out, s.Seller)
	}
	return out
}

// FilterSellers keeps the sales made by one of the given sellers. An empty
// allow-list keeps everything.
func FilterSellers(sales []models.Sale, sellers []string) []models.Sale {
	if len(sellers) == 0 {
		return sales
	}

	allowed := make(map[string]struct{}, len(sellers))
	for _, s := range sellers {
		allowed[s] = struct{}{}
	}

	out := make([]models.Sale, 0, len(sales))
	for _, s := range sales {
		if _, ok := allowed[s.Seller]; ok {
			out = append(out, s)
		}
	}
	return out
}

type stateGroup struct {
	coords  models.Coordinates
	revenue decimal.Decimal
	count   int
}

type sellerGroup struct {
	revenue decimal.Decimal
	count   int
}

type monthGroup struct {
	revenue decimal.Decimal
	count   int
}

// Aggregate derives every dashboard table from the working dataset.
func Aggregate(sales []models.Sale, topSellers int) *models.Report {
	states := make(map[string]*stateGroup)
	categoryRevenue := make(map[string]decimal.Decimal)
	categoryCount := make(map[string]int)
	months := make(map[time.Time]*monthGroup)
	sellers := make(map[string]*sellerGroup)
	total := decimal.Zero

	for _, s := range sales {
		price := decimal.NewFromFloat(s.Price)
		total = total.Add(price)

		if states[s.State] == nil {
			// coordinates come from the first sale seen in a state
			states[s.State] = &stateGroup{coords: models.Coordinates{Lat: s.Lat, Lon: s.Lon}}
		}
		states[s.State].revenue = states[s.State].revenue.Add(price)
		states[s.State].count++

		categoryRevenue[s.Category] = categoryRevenue[s.Category].Add(price)
		categoryCount[s.Category]++

		month := monthStart(s.PurchaseDate)
		if months[month] == nil {
			months[month] = &monthGroup{}
		}
		months[month].revenue = months[month].revenue.Add(price)
		months[month].count++

		if sellers[s.Seller] == nil {
			sellers[s.Seller] = &sellerGroup{}
		}
		sellers[s.Seller].revenue = sellers[s.Seller].revenue.Add(price)
		sellers[s.Seller].count++
	}

	report := &models.Report{
		TotalRevenue:      total.InexactFloat64(),
		TotalSales:        len(sales),
		RevenueByState:    sortStateRevenue(states),
		RevenueByCategory: sortCategoryRevenue(categoryRevenue),
		CountByState:      sortStateCount(states),
		CountByCategory:   sortCategoryCount(categoryCount),
		Sellers:           sortSellers(sellers),
		TopSellers:        topSellers,
	}
	report.MonthlyRevenue, report.MonthlyCount = monthlySeries(months)

	report.TopStatesByRevenue = head(report.RevenueByState, topStates)
	report.TopStatesByCount = head(report.CountByState, topStates)
	report.TopSellersByRevenue = TopSellersByRevenue(report.Sellers, topSellers)
	report.TopSellersByCount = TopSellersByCount(report.Sellers, topSellers)

	return report
}

// TopSellersByRevenue returns the n sellers with the largest revenue.
func TopSellersByRevenue(sellers []models.SellerSummary, n int) []models.SellerSummary {
	sorted := slices.Clone(sellers)
	slices.SortFunc(sorted, func(a, b models.SellerSummary) int {
		return descending(a.Revenue, b.Revenue, a.Seller, b.Seller)
	})
	return head(sorted, n)
}

// TopSellersByCount returns the n sellers with the most sales.
func TopSellersByCount(sellers []models.SellerSummary, n int) []models.SellerSummary {
	sorted := slices.Clone(sellers)
	slices.SortFunc(sorted, func(a, b models.SellerSummary) int {
		return descending(a.Count, b.Count, a.Seller, b.Seller)
	})
	return head(sorted, n)
}

func sortStateRevenue(groups map[string]*stateGroup) []models.StateRevenue {
	result := make([]models.StateRevenue, 0, len(groups))
	for state, g := range groups {
		result = append(result, models.StateRevenue{
			State:       state,
			Coordinates: g.coords,
			Revenue:     g.revenue.InexactFloat64(),
		})
	}
	slices.SortFunc(result, func(a, b models.StateRevenue) int {
		return descending(a.Revenue, b.Revenue, a.State, b.State)
	})
	return result
}

func sortStateCount(groups map[string]*stateGroup) []models.StateCount {
	result := make([]models.StateCount, 0, len(groups))
	for state, g := range groups {
		result = append(result, models.StateCount{
			State:       state,
			Coordinates: g.coords,
			Count:       g.count,
		})
	}
	slices.SortFunc(result, func(a, b models.StateCount) int {
		return descending(a.Count, b.Count, a.State, b.State)
	})
	return result
}

func sortCategoryRevenue(groups map[string]decimal.Decimal) []models.CategoryRevenue {
	result := make([]models.CategoryRevenue, 0, len(groups))
	for category, revenue := range groups {
		result = append(result, models.CategoryRevenue{Category: category, Revenue: revenue.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.CategoryRevenue) int {
		return descending(a.Revenue, b.Revenue, a.Category, b.Category)
	})
	return result
}

func sortCategoryCount(groups map[string]int) []models.CategoryCount {
	result := make([]models.CategoryCount, 0, len(groups))
	for category, count := range groups {
		result = append(result, models.CategoryCount{Category: category, Count: count})
	}
	slices.SortFunc(result, func(a, b models.CategoryCount) int {
		return descending(a.Count, b.Count, a.Category, b.Category)
	})
	return result
}

func sortSellers(groups map[string]*sellerGroup) []models.SellerSummary {
	result := make([]models.SellerSummary, 0, len(groups))
	for seller, g := range groups {
		result = append(result, models.SellerSummary{
			Seller:  seller,
			Revenue: g.revenue.InexactFloat64(),
			Count:   g.count,
		})
	}
	slices.SortFunc(result, func(a, b models.SellerSummary) int {
		return cmp.Compare(a.Seller, b.Seller)
	})
	return result
}

// monthlySeries emits one entry per calendar month from the first to the last
// month with sales; months without sales are zero.
func monthlySeries(groups map[time.Time]*monthGroup) (revenue, count []models.MonthlyValue) {
	revenue = make([]models.MonthlyValue, 0)
	count = make([]models.MonthlyValue, 0)
	if len(groups) == 0 {
		return revenue, count
	}

	var first, last time.Time
	for m := range groups {
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		entry := models.MonthlyValue{Year: m.Year(), Month: int(m.Month()), MonthName: m.Month().String()}

		rev, cnt := entry, entry
		if g := groups[m]; g != nil {
			rev.Value = g.revenue.InexactFloat64()
			cnt.Value = float64(g.count)
		}
		revenue = append(revenue, rev)
		count = append(count, cnt)
	}
	return revenue, count
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func descending[V cmp.Ordered](a, b V, labelA, labelB string) int {
	if c := cmp.Compare(b, a); c != 0 {
		return c
	}
	return cmp.Compare(labelA, labelB)
}

func head[T any](s []T, n int) []T {
	if n < 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
