package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"somikra/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sale(date time.Time, product, customer, state, country string, sales float64, qty int) models.SaleRecord {
	return models.SaleRecord{
		ID:       fmt.Sprintf("%s-%s-%s", date.Format(models.DateLayout), product, customer),
		Date:     date,
		Product:  product,
		Customer: customer,
		State:    state,
		Country:  country,
		Sales:    decimal.NewFromFloat(sales),
		Quantity: qty,
	}
}

func testRecords() []models.SaleRecord {
	return []models.SaleRecord{
		sale(day(2025, 1, 1), "Serum", "Ava", "CA", "USA", 120, 2),
		sale(day(2025, 1, 2), "Cleanser", "Ben", "NY", "USA", 45.5, 1),
		sale(day(2025, 1, 9), "Serum", "Ben", "NY", "USA", 60, 1),
		sale(day(2025, 2, 3), "Toner", "Cleo", "ON", "Canada", 30, 3),
		sale(day(2025, 2, 14), "Serum", "Ava", "CA", "USA", 180, 3),
	}
}

func TestMatches_EmptySelectionsMatchAllInRange(t *testing.T) {
	f := models.FilterState{Range: models.DateRange{Start: day(2025, 1, 1), End: day(2025, 1, 31)}}

	var got []string
	for _, r := range testRecords() {
		if Matches(r, f) {
			got = append(got, r.ID)
		}
	}

	assert.Len(t, got, 3)
}

func TestMatches_Selections(t *testing.T) {
	r := sale(day(2025, 1, 9), "Serum", "Ben", "NY", "USA", 60, 1)
	tests := []struct {
		name   string
		filter models.FilterState
		want   bool
	}{
		{"no filters", models.FilterState{}, true},
		{"product selected", models.FilterState{Products: []string{"Serum", "Toner"}}, true},
		{"product not selected", models.FilterState{Products: []string{"Toner"}}, false},
		{"customer selected", models.FilterState{Customers: []string{"Ben"}}, true},
		{"customer not selected", models.FilterState{Customers: []string{"Ava"}}, false},
		{"region selected", models.FilterState{Regions: []string{"NY, USA"}}, true},
		{"region not selected", models.FilterState{Regions: []string{"CA, USA"}}, false},
		{"start bound inclusive", models.FilterState{Range: models.DateRange{Start: day(2025, 1, 9)}}, true},
		{"end bound inclusive", models.FilterState{Range: models.DateRange{End: day(2025, 1, 9)}}, true},
		{"before start", models.FilterState{Range: models.DateRange{Start: day(2025, 1, 10)}}, false},
		{"after end", models.FilterState{Range: models.DateRange{End: day(2025, 1, 8)}}, false},
		{"selected but out of range", models.FilterState{
			Products: []string{"Serum"},
			Range:    models.DateRange{Start: day(2025, 2, 1), End: day(2025, 2, 28)},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(r, tt.filter))
		})
	}
}

func TestMatches_ZeroDateNeverMatches(t *testing.T) {
	r := sale(time.Time{}, "Serum", "Ava", "CA", "USA", 10, 1)
	assert.False(t, Matches(r, models.FilterState{}))
}

func TestPeriodKey(t *testing.T) {
	wed := day(2025, 1, 1)

	assert.Equal(t, "2025-01-01", PeriodKey(wed, models.Daily))
	assert.Equal(t, "2024-12-29", PeriodKey(wed, models.Weekly))
	assert.Equal(t, "2025-01", PeriodKey(wed, models.Monthly))
	assert.Equal(t, "2025-01-05", PeriodKey(day(2025, 1, 5), models.Weekly), "a Sunday starts its own week")
}

func TestAggregate_ConservesSales(t *testing.T) {
	records := testRecords()
	want := decimal.Zero
	for _, r := range records {
		want = want.Add(r.Sales)
	}

	for _, g := range []models.Granularity{models.Daily, models.Weekly, models.Monthly} {
		t.Run(string(g), func(t *testing.T) {
			got := decimal.Zero
			for _, b := range Aggregate(records, g) {
				got = got.Add(b.TotalSales)
			}
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestAggregate_MonthlyBuckets(t *testing.T) {
	records := testRecords()
	// out of order input still yields chronological buckets
	records[0], records[4] = records[4], records[0]

	buckets := Aggregate(records, models.Monthly)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2025-01", buckets[0].PeriodKey)
	assert.Equal(t, "225.5", buckets[0].TotalSales.String())
	assert.Equal(t, 4, buckets[0].TotalQuantity)
	assert.Equal(t, 2, buckets[0].UniqueCustomers)
	assert.Equal(t, "2025-02", buckets[1].PeriodKey)
	assert.Equal(t, 2, buckets[1].UniqueCustomers)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, models.Weekly))
}

func TestRank_TopThreeSorted(t *testing.T) {
	records := append(testRecords(), sale(day(2025, 3, 1), "Mask", "Dan", "TX", "USA", 5, 1))

	got := Rank(records, models.ByProduct, TopN)

	require.Len(t, got, 3)
	assert.Equal(t, "Serum", got[0].Label)
	assert.Equal(t, "360", got[0].TotalSales.String())
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].TotalSales.GreaterThan(got[i-1].TotalSales))
	}
}

func TestRank_LengthIsMinOfGroups(t *testing.T) {
	records := testRecords()

	assert.Len(t, Rank(records, models.ByRegion, TopN), 3)
	assert.Len(t, Rank(records[:2], models.ByRegion, TopN), 2)
	assert.Empty(t, Rank(nil, models.ByCustomer, TopN))
}

func TestRank_TiesKeepFirstSeenOrder(t *testing.T) {
	records := []models.SaleRecord{
		sale(day(2025, 1, 1), "B", "x", "", "", 10, 1),
		sale(day(2025, 1, 1), "A", "x", "", "", 10, 1),
		sale(day(2025, 1, 1), "C", "x", "", "", 10, 1),
	}

	got := Rank(records, models.ByProduct, TopN)

	assert.Equal(t, []string{"B", "A", "C"}, []string{got[0].Label, got[1].Label, got[2].Label})
}

func TestGrowthRate(t *testing.T) {
	b := func(v int64) models.AggregatedBucket {
		return models.AggregatedBucket{TotalSales: decimal.NewFromInt(v)}
	}

	assert.True(t, GrowthRate(nil).IsZero())
	assert.True(t, GrowthRate([]models.AggregatedBucket{b(0), b(500)}).IsZero())
	assert.Equal(t, "50", GrowthRate([]models.AggregatedBucket{b(100), b(150)}).String())
	assert.Equal(t, "-25", GrowthRate([]models.AggregatedBucket{b(200), b(1), b(150)}).String())
}

func TestTrendOf(t *testing.T) {
	b := func(v int64) models.AggregatedBucket {
		return models.AggregatedBucket{TotalSales: decimal.NewFromInt(v)}
	}

	assert.Equal(t, TrendGrowth, TrendOf([]models.AggregatedBucket{b(10), b(10)}))
	assert.Equal(t, TrendDecline, TrendOf([]models.AggregatedBucket{b(10), b(9)}))
	assert.Equal(t, TrendGrowth, TrendOf(nil))
}

func TestGenerate_RankPhrasingDiffers(t *testing.T) {
	records := testRecords()
	buckets := Aggregate(records, models.Monthly)
	in := InsightInput{
		Buckets:  buckets,
		Rankings: Rankings{Regions: Rank(records, models.ByRegion, TopN)},
		Summary:  Summarize(records, len(buckets)),
	}

	got := Generate(RegionalBreakdown, in)

	assert.Equal(t, "Regional Performance", got.Title)
	require.GreaterOrEqual(t, len(got.Lines), 3)
	assert.Contains(t, got.Lines[0], "CA, USA is your strongest market")
	assert.Contains(t, got.Lines[1], "second largest market")
	assert.Contains(t, got.Lines[2], "is third")
}

func TestGenerate_ZeroFirstBucket(t *testing.T) {
	in := InsightInput{Buckets: []models.AggregatedBucket{
		{PeriodKey: "2025-01", TotalSales: decimal.Zero},
		{PeriodKey: "2025-02", TotalSales: decimal.NewFromInt(80)},
	}}

	got := Generate(SalesOverview, in)

	assert.True(t, got.GrowthRate.IsZero())
	assert.Equal(t, TrendGrowth, got.Trend)
}

func TestGenerate_NoData(t *testing.T) {
	got := Generate(CustomerAnalysis, InsightInput{})

	assert.Equal(t, "Customer Insights", got.Title)
	require.Len(t, got.Lines, 1)
	assert.Contains(t, got.Lines[0], "No sales match")
}

func TestGenerate_UnknownTypeFallsBack(t *testing.T) {
	assert.Equal(t, "Sales Overview", Generate(ReportType("bogus"), InsightInput{}).Title)
}

func TestParseReportType(t *testing.T) {
	for _, rt := range ReportTypes() {
		got, ok := ParseReportType(string(rt))
		assert.True(t, ok)
		assert.Equal(t, rt, got)
	}
	_, ok := ParseReportType("nope")
	assert.False(t, ok)
}

func TestBuild_TwoDayScenario(t *testing.T) {
	records := []models.SaleRecord{
		sale(day(2025, 1, 1), "A", "c1", "", "", 100, 1),
		sale(day(2025, 1, 2), "B", "c2", "", "", 50, 1),
	}

	got := Build(records, Request{
		Granularity: models.Daily,
		Filter:      models.FilterState{Range: models.DateRange{Start: day(2025, 1, 1), End: day(2025, 1, 2)}},
	})

	require.Len(t, got.Buckets, 2)
	total := got.Buckets[0].TotalSales.Add(got.Buckets[1].TotalSales)
	assert.Equal(t, "150", total.String())
	require.NotEmpty(t, got.Rankings.Products)
	assert.Equal(t, "A", got.Rankings.Products[0].Label)
	assert.Equal(t, "100", got.Rankings.Products[0].TotalSales.String())
	assert.Equal(t, SalesOverview, got.Type)
	assert.Equal(t, TrendDecline, got.Insight.Trend)
}

func TestBuild_DefaultsInvalidGranularity(t *testing.T) {
	got := Build(testRecords(), Request{Granularity: "hourly"})
	assert.Equal(t, models.Daily, got.Granularity)
}

func TestSummarize(t *testing.T) {
	s := Summarize(testRecords(), 2)

	assert.Equal(t, "435.5", s.TotalSales.String())
	assert.Equal(t, 10, s.TotalQuantity)
	assert.Equal(t, 5, s.Orders)
	assert.Equal(t, 3, s.UniqueCustomers)
	assert.Equal(t, "87.1", s.AverageOrderValue.String())
	assert.Equal(t, "217.75", s.AveragePerPeriod.String())

	empty := Summarize(nil, 0)
	assert.True(t, empty.AverageOrderValue.IsZero())
	assert.True(t, empty.AverageCustomerValue.IsZero())
}
