package models

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type StateRevenue struct {
	State string `json:"state"`
	Coordinates
	Revenue float64 `json:"revenue"`
}

type StateCount struct {
	State string `json:"state"`
	Coordinates
	Count int `json:"count"`
}

type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// MonthlyValue is one calendar month of a monthly series. Value is a revenue
// sum or a sale count depending on the table.
type MonthlyValue struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Value     float64 `json:"value"`
}

type SellerSummary struct {
	Seller  string  `json:"seller"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

type Report struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalSales   int     `json:"total_sales"`

	RevenueByState    []StateRevenue    `json:"revenue_by_state"`
	RevenueByCategory []CategoryRevenue `json:"revenue_by_category"`
	MonthlyRevenue    []MonthlyValue    `json:"monthly_revenue"`

	CountByState    []StateCount    `json:"count_by_state"`
	CountByCategory []CategoryCount `json:"count_by_category"`
	MonthlyCount    []MonthlyValue  `json:"monthly_count"`

	Sellers []SellerSummary `json:"sellers"`

	TopStatesByRevenue  []StateRevenue  `json:"top_states_by_revenue"`
	TopStatesByCount    []StateCount    `json:"top_states_by_count"`
	TopSellersByRevenue []SellerSummary `json:"top_sellers_by_revenue"`
	TopSellersByCount   []SellerSummary `json:"top_sellers_by_count"`
	TopSellers          int             `json:"top_sellers"`
}
