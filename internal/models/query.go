package models

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query parameter names shared by the page, API and export routes.
const (
	ParamRegion = "region"
	ParamYear   = "year"
	ParamSeller = "seller"
	ParamTop    = "top"
)

// ParseQuery reads filters from URL query parameters. A missing year selects
// the whole period.
func ParseQuery(q url.Values) (Filters, error) {
	f := Filters{
		Region:   q.Get(ParamRegion),
		AllYears: true,
		Sellers:  q[ParamSeller],
	}

	if raw := q.Get(ParamYear); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: year %q is not a number", ErrInvalidFilter, raw)
		}
		f.AllYears = false
		f.Year = year
	}

	if raw := q.Get(ParamTop); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: top %q is not a number", ErrInvalidFilter, raw)
		}
		f.TopSellers = top
	}

	return f, nil
}

// Query is the inverse of ParseQuery.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if f.Region != "" {
		q.Set(ParamRegion, f.Region)
	}
	if !f.AllYears {
		q.Set(ParamYear, strconv.Itoa(f.Year))
	}
	for _, s := range f.Sellers {
		q.Add(ParamSeller, s)
	}
	if f.TopSellers != 0 {
		q.Set(ParamTop, strconv.Itoa(f.TopSellers))
	}
	return q
}
