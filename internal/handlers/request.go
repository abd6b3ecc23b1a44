package handlers

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"somikra/internal/errors"
	"somikra/internal/models"
	"somikra/internal/report"
	"somikra/internal/services"
)

// reportParams is the filter form, shared by query strings and Datastar
// signals.
type reportParams struct {
	Type        string   `json:"type"`
	Granularity string   `json:"granularity"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Products    []string `json:"products"`
	Regions     []string `json:"regions"`
	Customers   []string `json:"customers"`
}

func paramsFromQuery(q url.Values) reportParams {
	return reportParams{
		Type:        q.Get("type"),
		Granularity: q.Get("granularity"),
		Start:       q.Get("start"),
		End:         q.Get("end"),
		Products:    multi(q, "product"),
		Regions:     multi(q, "region"),
		Customers:   multi(q, "customer"),
	}
}

// multi collects repeated keys. Values are not split on commas because
// region labels contain one.
func multi(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (p reportParams) request() (report.Request, error) {
	rt, ok := report.ParseReportType(p.Type)
	if !ok {
		return report.Request{}, errors.Validation(fmt.Sprintf("unknown report type %q", p.Type))
	}
	g, ok := models.ParseGranularity(p.Granularity)
	if !ok {
		return report.Request{}, errors.Validation(fmt.Sprintf("granularity must be daily, weekly or monthly, got %q", p.Granularity))
	}
	start, err := optionalDate(p.Start, "start")
	if err != nil {
		return report.Request{}, err
	}
	end, err := optionalDate(p.End, "end")
	if err != nil {
		return report.Request{}, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return report.Request{}, errors.Validation("end date must not be before start date")
	}

	return report.Request{
		Type:        rt,
		Granularity: g,
		Filter: models.FilterState{
			Range:     models.DateRange{Start: start, End: end},
			Products:  p.Products,
			Regions:   p.Regions,
			Customers: p.Customers,
		},
	}, nil
}

func optionalDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := services.ParseDate(s)
	if err != nil {
		return time.Time{}, errors.ValidationWrap(err, fmt.Sprintf("%s must be a date like 2025-01-31", field))
	}
	return t, nil
}
