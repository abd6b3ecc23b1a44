package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"somikra/internal/models"
)

// PeriodStart returns the first day of the bucket containing t. Weeks start
// on Sunday.
func PeriodStart(t time.Time, g models.Granularity) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case models.Weekly:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case models.Monthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func PeriodKey(t time.Time, g models.Granularity) string {
	start := PeriodStart(t, g)
	if g == models.Monthly {
		return start.Format("2006-01")
	}
	return start.Format(models.DateLayout)
}

type bucketAcc struct {
	bucket    models.AggregatedBucket
	customers map[string]struct{}
}

// Aggregate groups records into period buckets, sorted chronologically.
func Aggregate(records []models.SaleRecord, g models.Granularity) []models.AggregatedBucket {
	groups := make(map[string]*bucketAcc)
	for _, r := range records {
		key := PeriodKey(r.Date, g)
		acc := groups[key]
		if acc == nil {
			acc = &bucketAcc{
				bucket: models.AggregatedBucket{
					PeriodKey:   key,
					PeriodStart: PeriodStart(r.Date, g),
					TotalSales:  decimal.Zero,
				},
				customers: make(map[string]struct{}),
			}
			groups[key] = acc
		}
		acc.bucket.TotalSales = acc.bucket.TotalSales.Add(r.Sales)
		acc.bucket.TotalQuantity += r.Quantity
		acc.customers[r.Customer] = struct{}{}
	}

	result := make([]models.AggregatedBucket, 0, len(groups))
	for _, acc := range groups {
		acc.bucket.UniqueCustomers = len(acc.customers)
		result = append(result, acc.bucket)
	}
	slices.SortFunc(result, func(a, b models.AggregatedBucket) int {
		return a.PeriodStart.Compare(b.PeriodStart)
	})
	return result
}
