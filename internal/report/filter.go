package report

import (
	"slices"

	"somikra/internal/models"
)

// Matches reports whether a record passes the filter. An empty selection for
// a category matches every value of that category.
func Matches(r models.SaleRecord, f models.FilterState) bool {
	if !f.Range.Contains(r.Date) {
		return false
	}
	return selected(f.Products, r.Product) &&
		selected(f.Customers, r.Customer) &&
		selected(f.Regions, r.Region())
}

func selected(set []string, value string) bool {
	return len(set) == 0 || slices.Contains(set, value)
}

func Filter(records []models.SaleRecord, f models.FilterState) []models.SaleRecord {
	out := make([]models.SaleRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, f) {
			out = append(out, r)
		}
	}
	return out
}
