package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type SaleRecord struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id,omitempty"`
	Date     time.Time       `json:"date"`
	Product  string          `json:"product"`
	State    string          `json:"state"`
	Country  string          `json:"country"`
	Customer string          `json:"customer"`
	Sales    decimal.Decimal `json:"sales"`
	Quantity int             `json:"quantity"`
}

// Valid reports whether the record may take part in aggregation.
func (r SaleRecord) Valid() bool {
	return !r.Date.IsZero() &&
		r.Product != "" &&
		r.Customer != "" &&
		!r.Sales.IsNegative() &&
		r.Quantity >= 0
}

// Region joins state and country into the label used for regional grouping.
func (r SaleRecord) Region() string {
	switch {
	case r.State == "":
		return r.Country
	case r.Country == "":
		return r.State
	}
	return r.State + ", " + r.Country
}

// DateRange bounds are inclusive. A zero bound leaves that side open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (d DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	day := truncateDay(t)
	if !d.Start.IsZero() && day.Before(truncateDay(d.Start)) {
		return false
	}
	if !d.End.IsZero() && day.After(truncateDay(d.End)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type FilterState struct {
	Range     DateRange `json:"range"`
	Products  []string  `json:"products,omitempty"`
	Regions   []string  `json:"regions,omitempty"`
	Customers []string  `json:"customers,omitempty"`
}

type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

func ParseGranularity(s string) (Granularity, bool) {
	switch g := Granularity(s); g {
	case Daily, Weekly, Monthly:
		return g, true
	case "":
		return Daily, true
	}
	return "", false
}

type Dimension string

const (
	ByProduct  Dimension = "product"
	ByCustomer Dimension = "customer"
	ByRegion   Dimension = "region"
)

type AggregatedBucket struct {
	PeriodKey       string          `json:"period_key"`
	PeriodStart     time.Time       `json:"period_start"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalQuantity   int             `json:"total_quantity"`
	UniqueCustomers int             `json:"unique_customers"`
}

type RankingEntry struct {
	Label      string          `json:"label"`
	TotalSales decimal.Decimal `json:"total_sales"`
}
