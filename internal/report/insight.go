package report

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"somikra/internal/models"
)

type ReportType string

const (
	SalesOverview      ReportType = "sales_overview"
	ProductPerformance ReportType = "product_performance"
	CustomerAnalysis   ReportType = "customer_analysis"
	RegionalBreakdown  ReportType = "regional_breakdown"
)

type Trend string

const (
	TrendGrowth  Trend = "growth"
	TrendDecline Trend = "decline"
)

var hundred = decimal.NewFromInt(100)

type Rankings struct {
	Products  []models.RankingEntry `json:"products"`
	Customers []models.RankingEntry `json:"customers"`
	Regions   []models.RankingEntry `json:"regions"`
}

func (r Rankings) For(d models.Dimension) []models.RankingEntry {
	switch d {
	case models.ByCustomer:
		return r.Customers
	case models.ByRegion:
		return r.Regions
	default:
		return r.Products
	}
}

type Insight struct {
	Title      string          `json:"title"`
	Trend      Trend           `json:"trend"`
	GrowthRate decimal.Decimal `json:"growth_rate"`
	Lines      []string        `json:"lines"`
}

// InsightInput is everything a report variant may draw on.
type InsightInput struct {
	Buckets  []models.AggregatedBucket
	Rankings Rankings
	Summary  Summary
}

type variant struct {
	title     string
	dimension models.Dimension
	// ranked phrasing for 1st, 2nd and 3rd place: label, amount, share
	ranked [TopN]string
	lines  func(in InsightInput, trend Trend, growth decimal.Decimal) []string
}

var variants = map[ReportType]variant{
	SalesOverview: {
		title:     "Sales Overview",
		dimension: models.ByProduct,
		ranked: [TopN]string{
			"Your best seller, %s, brought in %s (%s%% of sales).",
			"%s came in second with %s (%s%%).",
			"%s completes the podium at %s (%s%%).",
		},
		lines: func(in InsightInput, trend Trend, growth decimal.Decimal) []string {
			s := in.Summary
			return []string{
				fmt.Sprintf("Total sales reached %s across %d %s.", money(s.TotalSales), len(in.Buckets), plural(len(in.Buckets), "period", "periods")),
				fmt.Sprintf("On average each period generated %s, with %d units sold in total.", money(s.AveragePerPeriod), s.TotalQuantity),
				trendLine(in.Buckets, trend, growth),
			}
		},
	},
	ProductPerformance: {
		title:     "Product Performance",
		dimension: models.ByProduct,
		ranked: [TopN]string{
			"%s is your top product with %s in sales, %s%% of the total.",
			"%s follows in second place at %s (%s%%).",
			"%s rounds out the top three with %s (%s%%).",
		},
		lines: func(in InsightInput, trend Trend, growth decimal.Decimal) []string {
			lines := []string{trendLine(in.Buckets, trend, growth)}
			if trend == TrendGrowth {
				lines = append(lines, "Momentum is on your side: keep inventory deep on the leaders and test bundles with the runner-up.")
			} else {
				lines = append(lines, "Demand is softening: consider a promotion on the leading product before stock ages.")
			}
			return lines
		},
	},
	CustomerAnalysis: {
		title:     "Customer Insights",
		dimension: models.ByCustomer,
		ranked: [TopN]string{
			"%s is your most valuable customer with %s spent (%s%% of sales).",
			"%s is the second biggest spender at %s (%s%%).",
			"%s ranks third with %s (%s%%).",
		},
		lines: func(in InsightInput, trend Trend, growth decimal.Decimal) []string {
			s := in.Summary
			return []string{
				fmt.Sprintf("%d unique %s placed %d %s.", s.UniqueCustomers, plural(s.UniqueCustomers, "customer", "customers"), s.Orders, plural(s.Orders, "order", "orders")),
				fmt.Sprintf("Average order value (AOV) is %s.", money(s.AverageOrderValue)),
				fmt.Sprintf("Average customer lifetime value (CLV) is %s.", money(s.AverageCustomerValue)),
				trendLine(in.Buckets, trend, growth),
			}
		},
	},
	RegionalBreakdown: {
		title:     "Regional Performance",
		dimension: models.ByRegion,
		ranked: [TopN]string{
			"%s is your strongest market with %s (%s%% of sales).",
			"%s is the second largest market at %s (%s%%).",
			"%s is third with %s (%s%%).",
		},
		lines: func(in InsightInput, trend Trend, growth decimal.Decimal) []string {
			return []string{trendLine(in.Buckets, trend, growth)}
		},
	},
}

// ReportTypes lists the known report types in display order.
func ReportTypes() []ReportType {
	return []ReportType{SalesOverview, ProductPerformance, CustomerAnalysis, RegionalBreakdown}
}

func ParseReportType(s string) (ReportType, bool) {
	if s == "" {
		return SalesOverview, true
	}
	t := ReportType(s)
	_, ok := variants[t]
	return t, ok
}

func (t ReportType) Dimension() models.Dimension {
	return variants[t].dimension
}

// TrendOf compares the first and last bucket. Equal totals count as growth.
func TrendOf(buckets []models.AggregatedBucket) Trend {
	if len(buckets) == 0 {
		return TrendGrowth
	}
	first, last := buckets[0].TotalSales, buckets[len(buckets)-1].TotalSales
	if last.LessThan(first) {
		return TrendDecline
	}
	return TrendGrowth
}

// GrowthRate is the percentage change from the first to the last bucket. It
// is zero when there are no buckets or the first bucket had no sales.
func GrowthRate(buckets []models.AggregatedBucket) decimal.Decimal {
	if len(buckets) == 0 {
		return decimal.Zero
	}
	first, last := buckets[0].TotalSales, buckets[len(buckets)-1].TotalSales
	if first.IsZero() {
		return decimal.Zero
	}
	return last.Sub(first).Div(first).Mul(hundred).Round(2)
}

// Generate renders the narrative for a report type. Unknown types fall back
// to the sales overview.
func Generate(t ReportType, in InsightInput) Insight {
	v, ok := variants[t]
	if !ok {
		v = variants[SalesOverview]
	}
	trend := TrendOf(in.Buckets)
	growth := GrowthRate(in.Buckets)

	insight := Insight{Title: v.title, Trend: trend, GrowthRate: growth}
	if len(in.Buckets) == 0 {
		insight.Lines = []string{"No sales match the current filters. Widen the date range or clear a filter."}
		return insight
	}

	for i, entry := range in.Rankings.For(v.dimension) {
		if i >= TopN {
			break
		}
		insight.Lines = append(insight.Lines, fmt.Sprintf(v.ranked[i], entry.Label, money(entry.TotalSales), share(entry.TotalSales, in.Summary.TotalSales)))
	}
	insight.Lines = append(insight.Lines, v.lines(in, trend, growth)...)
	insight.Lines = slices.DeleteFunc(insight.Lines, func(s string) bool { return s == "" })
	return insight
}

func trendLine(buckets []models.AggregatedBucket, trend Trend, growth decimal.Decimal) string {
	if len(buckets) < 2 {
		return "Only one period is in range, so there is no trend to report yet."
	}
	first, last := buckets[0], buckets[len(buckets)-1]
	if trend == TrendDecline {
		return fmt.Sprintf("Sales declined %s%% from %s (%s) to %s (%s).",
			growth.Abs().StringFixed(1), first.PeriodKey, money(first.TotalSales), last.PeriodKey, money(last.TotalSales))
	}
	return fmt.Sprintf("Sales grew %s%% from %s (%s) to %s (%s).",
		growth.StringFixed(1), first.PeriodKey, money(first.TotalSales), last.PeriodKey, money(last.TotalSales))
}

func share(part, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0"
	}
	return part.Div(total).Mul(hundred).StringFixed(1)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
