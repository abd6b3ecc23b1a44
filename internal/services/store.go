package services

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"somikra/internal/models"
)

// SaleStore holds one session's sale records. Mutations swap the whole slice
// so snapshots handed to readers are never written to.
type SaleStore struct {
	mu        sync.RWMutex
	records   []models.SaleRecord
	updatedAt time.Time
	uploads   int
	logger    *slog.Logger
}

func NewSaleStore(logger *slog.Logger) *SaleStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaleStore{
		records: []models.SaleRecord{},
		logger:  logger,
	}
}

// SetData replaces the records without counting as an upload.
func (s *SaleStore) SetData(data []models.SaleRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = slices.Clone(data)
	s.updatedAt = time.Now()
}

func (s *SaleStore) Append(data []models.SaleRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.SaleRecord, 0, len(s.records)+len(data))
	next = append(next, s.records...)
	next = append(next, data...)
	s.records = next
	s.updatedAt = time.Now()
	s.uploads++

	s.logger.Debug("records appended", "added", len(data), "total", len(next))
	return len(next)
}

func (s *SaleStore) Replace(data []models.SaleRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = slices.Clone(data)
	s.updatedAt = time.Now()
	s.uploads++
	return len(s.records)
}

func (s *SaleStore) Snapshot() []models.SaleRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

func (s *SaleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FilterOptions lists the distinct values available to each multi-select.
type FilterOptions struct {
	Products  []string `json:"products"`
	Regions   []string `json:"regions"`
	Customers []string `json:"customers"`
	MinDate   string   `json:"min_date,omitempty"`
	MaxDate   string   `json:"max_date,omitempty"`
}

func (s *SaleStore) Options() FilterOptions {
	records := s.Snapshot()

	products := make(map[string]struct{})
	regions := make(map[string]struct{})
	customers := make(map[string]struct{})
	var minDate, maxDate time.Time
	for _, r := range records {
		products[r.Product] = struct{}{}
		regions[r.Region()] = struct{}{}
		customers[r.Customer] = struct{}{}
		if minDate.IsZero() || r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}

	opts := FilterOptions{
		Products:  sortedKeys(products),
		Regions:   sortedKeys(regions),
		Customers: sortedKeys(customers),
	}
	if !minDate.IsZero() {
		opts.MinDate = minDate.Format(models.DateLayout)
		opts.MaxDate = maxDate.Format(models.DateLayout)
	}
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Utility method for monitoring
func (s *SaleStore) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"record_count": len(s.records),
		"last_updated": s.updatedAt,
		"uploads":      s.uploads,
	}
}
