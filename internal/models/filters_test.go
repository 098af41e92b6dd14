package models

import (
	"errors"
	"testing"
)

var testLimits = FilterLimits{
	Regions:           []string{"Brasil", "Centro-Oeste", "Nordeste", "Norte", "Sudeste", "Sul"},
	MinYear:           2020,
	MaxYear:           2023,
	DefaultTopSellers: 5,
}

func TestFilters_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		in         Filters
		wantRegion string
		wantTop    int
	}{
		{"defaults", Filters{AllYears: true}, "Brasil", 5},
		{"case insensitive region", Filters{Region: "sudeste", AllYears: true}, "Sudeste", 5},
		{"year in range", Filters{Region: "Sul", Year: 2021}, "Sul", 5},
		{"top sellers clamped low", Filters{AllYears: true, TopSellers: 1}, "Brasil", 2},
		{"top sellers clamped high", Filters{AllYears: true, TopSellers: 50}, "Brasil", 10},
		{"top sellers kept", Filters{AllYears: true, TopSellers: 7}, "Brasil", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize(testLimits)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got.Region != tt.wantRegion {
				t.Errorf("Region = %q, want %q", got.Region, tt.wantRegion)
			}
			if got.TopSellers != tt.wantTop {
				t.Errorf("TopSellers = %d, want %d", got.TopSellers, tt.wantTop)
			}
		})
	}
}

func TestFilters_Normalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   Filters
	}{
		{"unknown region", Filters{Region: "Atlantida", AllYears: true}},
		{"year too early", Filters{Year: 2019}},
		{"year too late", Filters{Year: 2024}},
		{"year missing", Filters{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Normalize(testLimits)
			if !errors.Is(err, ErrInvalidFilter) {
				t.Errorf("Normalize() error = %v, want ErrInvalidFilter", err)
			}
		})
	}
}

func TestFilters_Upstream(t *testing.T) {
	tests := []struct {
		in         Filters
		wantRegion string
		wantYear   int
	}{
		{Filters{Region: "Brasil", AllYears: true, Year: 2021}, "", 0},
		{Filters{Region: "Centro-Oeste", Year: 2022}, "centro-oeste", 2022},
		{Filters{Region: "Sul", AllYears: true}, "sul", 0},
	}

	for _, tt := range tests {
		if got := tt.in.UpstreamRegion(); got != tt.wantRegion {
			t.Errorf("UpstreamRegion(%q) = %q, want %q", tt.in.Region, got, tt.wantRegion)
		}
		if got := tt.in.UpstreamYear(); got != tt.wantYear {
			t.Errorf("UpstreamYear() = %d, want %d", got, tt.wantYear)
		}
	}
}
