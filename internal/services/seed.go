package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"somikra/internal/models"
)

type seedProduct struct {
	name  string
	price decimal.Decimal
}

var (
	seedProducts = []seedProduct{
		{"Vitamin C Serum", decimal.RequireFromString("59.99")},
		{"Hydrating Cleanser", decimal.RequireFromString("24.50")},
		{"Night Repair Cream", decimal.RequireFromString("72.00")},
		{"SPF 50 Sunscreen", decimal.RequireFromString("32.00")},
	}
	seedCustomers = []string{"Jane Doe", "John Smith", "Priya Patel", "Luis Garcia", "Mei Chen"}
	seedRegions   = [][2]string{{"CA", "USA"}, {"NY", "USA"}, {"TX", "USA"}, {"ON", "Canada"}}
)

// MockSales returns the demo records a new session starts with. The set is
// deterministic apart from record IDs.
func MockSales() []models.SaleRecord {
	start := time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
	records := make([]models.SaleRecord, 0, 36)
	for i := 0; i < 36; i++ {
		p := seedProducts[(i*7+i/4)%len(seedProducts)]
		region := seedRegions[(i*3)%len(seedRegions)]
		qty := 1 + (i*5)%4
		records = append(records, models.SaleRecord{
			ID:       uuid.NewString(),
			Date:     start.AddDate(0, 0, i*2+i%3),
			Product:  p.name,
			State:    region[0],
			Country:  region[1],
			Customer: seedCustomers[(i*2+i/5)%len(seedCustomers)],
			Sales:    p.price.Mul(decimal.NewFromInt(int64(qty))),
			Quantity: qty,
		})
	}
	return records
}
