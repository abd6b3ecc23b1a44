package report

import (
	"slices"

	"github.com/shopspring/decimal"

	"somikra/internal/models"
)

const TopN = 3

func label(r models.SaleRecord, d models.Dimension) string {
	switch d {
	case models.ByCustomer:
		return r.Customer
	case models.ByRegion:
		return r.Region()
	default:
		return r.Product
	}
}

// Rank sums sales per group and returns the n largest groups. Equal totals
// keep the order in which the groups were first seen.
func Rank(records []models.SaleRecord, d models.Dimension, n int) []models.RankingEntry {
	index := make(map[string]int)
	entries := make([]models.RankingEntry, 0)
	for _, r := range records {
		key := label(r, d)
		i, ok := index[key]
		if !ok {
			i = len(entries)
			index[key] = i
			entries = append(entries, models.RankingEntry{Label: key, TotalSales: decimal.Zero})
		}
		entries[i].TotalSales = entries[i].TotalSales.Add(r.Sales)
	}

	slices.SortStableFunc(entries, func(a, b models.RankingEntry) int {
		return b.TotalSales.Cmp(a.TotalSales)
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
