package report

import (
	"github.com/shopspring/decimal"

	"somikra/internal/models"
)

type Request struct {
	Type        ReportType         `json:"type"`
	Granularity models.Granularity `json:"granularity"`
	Filter      models.FilterState `json:"filter"`
}

type Summary struct {
	TotalSales           decimal.Decimal `json:"total_sales"`
	TotalQuantity        int             `json:"total_quantity"`
	Orders               int             `json:"orders"`
	UniqueCustomers      int             `json:"unique_customers"`
	AverageOrderValue    decimal.Decimal `json:"average_order_value"`
	AveragePerPeriod     decimal.Decimal `json:"average_per_period"`
	AverageCustomerValue decimal.Decimal `json:"average_customer_value"`
}

type Report struct {
	Type        ReportType                `json:"type"`
	Granularity models.Granularity        `json:"granularity"`
	Buckets     []models.AggregatedBucket `json:"buckets"`
	Rankings    Rankings                  `json:"rankings"`
	Summary     Summary                   `json:"summary"`
	Insight     Insight                   `json:"insight"`
}

// Build runs filter, aggregate, rank and insight generation over records.
func Build(records []models.SaleRecord, req Request) Report {
	if _, ok := variants[req.Type]; !ok {
		req.Type = SalesOverview
	}
	g, ok := models.ParseGranularity(string(req.Granularity))
	if !ok {
		g = models.Daily
	}
	req.Granularity = g

	filtered := Filter(records, req.Filter)
	buckets := Aggregate(filtered, req.Granularity)
	rankings := Rankings{
		Products:  Rank(filtered, models.ByProduct, TopN),
		Customers: Rank(filtered, models.ByCustomer, TopN),
		Regions:   Rank(filtered, models.ByRegion, TopN),
	}
	summary := Summarize(filtered, len(buckets))

	return Report{
		Type:        req.Type,
		Granularity: req.Granularity,
		Buckets:     buckets,
		Rankings:    rankings,
		Summary:     summary,
		Insight: Generate(req.Type, InsightInput{
			Buckets:  buckets,
			Rankings: rankings,
			Summary:  summary,
		}),
	}
}

// Summarize computes headline metrics. Averages are zero when their
// denominator is zero.
func Summarize(records []models.SaleRecord, periods int) Summary {
	s := Summary{TotalSales: decimal.Zero}
	customers := make(map[string]struct{})
	for _, r := range records {
		s.TotalSales = s.TotalSales.Add(r.Sales)
		s.TotalQuantity += r.Quantity
		customers[r.Customer] = struct{}{}
	}
	s.Orders = len(records)
	s.UniqueCustomers = len(customers)
	s.AverageOrderValue = safeDiv(s.TotalSales, s.Orders)
	s.AveragePerPeriod = safeDiv(s.TotalSales, periods)
	s.AverageCustomerValue = safeDiv(s.TotalSales, s.UniqueCustomers)
	return s
}

func safeDiv(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}
