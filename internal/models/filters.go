package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// NationalRegion selects every region; it is sent upstream as an empty region.
	NationalRegion = "Brasil"

	MinTopSellers = 2
	MaxTopSellers = 10
)

var ErrInvalidFilter = errors.New("invalid filter")

// Filters is the state of the sidebar and the sellers tab.
type Filters struct {
	Region     string   `json:"region"`
	AllYears   bool     `json:"allYears"`
	Year       int      `json:"year"`
	Sellers    []string `json:"sellers"`
	TopSellers int      `json:"topSellers"`
}

// FilterLimits bounds what Normalize accepts.
type FilterLimits struct {
	Regions           []string
	MinYear           int
	MaxYear           int
	DefaultTopSellers int
}

// Normalize fills defaults and rejects values the dashboard does not offer.
func (f Filters) Normalize(limits FilterLimits) (Filters, error) {
	out := f
	out.Sellers = slices.Clone(f.Sellers)

	if out.Region == "" {
		out.Region = NationalRegion
	}
	idx := slices.IndexFunc(limits.Regions, func(r string) bool {
		return strings.EqualFold(r, out.Region)
	})
	if idx < 0 {
		return Filters{}, fmt.Errorf("%w: unknown region %q", ErrInvalidFilter, f.Region)
	}
	out.Region = limits.Regions[idx]

	if !out.AllYears {
		if out.Year < limits.MinYear || out.Year > limits.MaxYear {
			return Filters{}, fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidFilter, out.Year, limits.MinYear, limits.MaxYear)
		}
	}

	switch {
	case out.TopSellers == 0:
		out.TopSellers = limits.DefaultTopSellers
	case out.TopSellers < MinTopSellers:
		out.TopSellers = MinTopSellers
	case out.TopSellers > MaxTopSellers:
		out.TopSellers = MaxTopSellers
	}

	return out, nil
}

// UpstreamRegion is the region query value for the sales API.
func (f Filters) UpstreamRegion() string {
	if strings.EqualFold(f.Region, NationalRegion) {
		return ""
	}
	return strings.ToLower(f.Region)
}

// UpstreamYear is the year query value for the sales API; 0 means every year.
func (f Filters) UpstreamYear() int {
	if f.AllYears {
		return 0
	}
	return f.Year
}
