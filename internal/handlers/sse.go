package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	apperrors "somikra/internal/errors"
	"somikra/internal/observability"
	"somikra/internal/report"
	"somikra/internal/services"
)

const maxTableRows = 50

var insightTemplate = template.Must(template.New("insight").Parse(`
<div id="insight-content">
<h3>{{.Insight.Title}}</h3>
<p class="trend trend-{{.Insight.Trend}}">{{if eq .Insight.Trend "growth"}}▲{{else}}▼{{end}} {{.Insight.GrowthRate.StringFixed 1}}% first to last period</p>
<ul class="insight-lines">
{{range .Insight.Lines}}<li>{{.}}</li>
{{end}}</ul>
<table class="modern-table">
<thead><tr><th>Period</th><th>Sales</th><th>Units</th><th>Customers</th></tr></thead>
<tbody>
{{range $i, $b := .Buckets}}{{if lt $i $.MaxRows}}<tr>
<td>{{$b.PeriodKey}}</td>
<td><strong>${{$b.TotalSales.StringFixed 2}}</strong></td>
<td>{{$b.TotalQuantity}}</td>
<td>{{$b.UniqueCustomers}}</td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

var filterOptionsTemplate = template.Must(template.New("filters").Parse(`
<div id="filter-options">
{{range .}}<label>{{.Label}}
<select multiple size="4" data-bind="filters.{{.Signal}}" data-on:change="@get('/sse/report')">
{{range .Values}}<option value="{{.}}">{{.}}</option>
{{end}}</select></label>
{{end}}</div>`))

type filterSelect struct {
	Label  string
	Signal string
	Values []string
}

type SSEHandlers struct {
	sessions  *services.Sessions
	parser    *services.Parser
	uploadMax int64
	logger    *slog.Logger
}

func NewSSEHandlers(deps Deps, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		sessions:  deps.Sessions,
		parser:    deps.Parser,
		uploadMax: deps.UploadMax,
		logger:    logger,
	}
}

func renderFilterOptions(opts services.FilterOptions) (string, error) {
	var buf strings.Builder
	err := filterOptionsTemplate.Execute(&buf, []filterSelect{
		{Label: "Products", Signal: "products", Values: opts.Products},
		{Label: "Regions", Signal: "regions", Values: opts.Regions},
		{Label: "Customers", Signal: "customers", Values: opts.Customers},
	})
	return buf.String(), err
}

type insightView struct {
	report.Report
	MaxRows int
}

func (h *SSEHandlers) renderInsight(rep report.Report) (string, error) {
	var buf strings.Builder
	err := insightTemplate.Execute(&buf, insightView{Report: rep, MaxRows: maxTableRows})
	return buf.String(), err
}

// readParams prefers Datastar signals and falls back to plain query
// parameters when none were sent.
func (h *SSEHandlers) readParams(r *http.Request) reportParams {
	var signals struct {
		Filters *reportParams `json:"filters"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		observability.LoggerFrom(r.Context(), h.logger).Warn("ignoring unreadable signals", "error", err)
	}
	if signals.Filters != nil {
		return *signals.Filters
	}
	return paramsFromQuery(r.URL.Query())
}

func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFrom(r.Context(), h.logger)
	params := h.readParams(r)
	store := h.sessions.Get(observability.GetSessionID(r.Context()))

	sse := datastar.NewSSE(w, r)

	req, err := params.request()
	if err != nil {
		errJSON, _ := json.Marshal(map[string]any{"reportError": err.Error()})
		_ = sse.PatchSignals(errJSON)
		return
	}

	rep := report.Build(store.Snapshot(), req)
	html, err := h.renderInsight(rep)
	if err != nil {
		logger.Error("render insight", "error", err)
		return
	}

	signals, err := json.Marshal(map[string]any{
		"report":      rep,
		"reportError": "",
	})
	if err != nil {
		logger.Error("marshal report signals", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		logger.Debug("patch signals", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		logger.Debug("patch elements", "error", err)
	}
}

func (h *SSEHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Get(observability.GetSessionID(r.Context()))
	sse := datastar.NewSSE(w, r)
	h.patchFilters(r, sse, store, nil)
}

// patchFilters refreshes the multi-selects and the record count, merging in
// any extra signals.
func (h *SSEHandlers) patchFilters(r *http.Request, sse *datastar.ServerSentEventGenerator, store *services.SaleStore, extra map[string]any) {
	logger := observability.LoggerFrom(r.Context(), h.logger)

	html, err := renderFilterOptions(store.Options())
	if err != nil {
		logger.Error("render filter options", "error", err)
		return
	}

	values := map[string]any{"recordCount": store.Len()}
	for k, v := range extra {
		values[k] = v
	}
	signals, err := json.Marshal(values)
	if err != nil {
		logger.Error("marshal filter signals", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		logger.Debug("patch signals", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		logger.Debug("patch elements", "error", err)
	}
}

// HandleUpload takes the dashboard's upload form. On success it bumps the
// uploads signal, which makes the page request a fresh report.
func (h *SSEHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, h.parser, h.uploadMax)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		msg := err.Error()
		var appErr *apperrors.AppError
		if stderrors.As(err, &appErr) {
			msg = appErr.Message
		}
		observability.LoggerFrom(r.Context(), h.logger).Warn("upload rejected", "error", err)
		errJSON, _ := json.Marshal(map[string]any{"uploadMessage": msg})
		_ = sse.PatchSignals(errJSON)
		return
	}

	store := h.sessions.Get(observability.GetSessionID(r.Context()))
	total := up.merge(store)
	up.log(r, h.logger, total)

	h.patchFilters(r, sse, store, map[string]any{
		"uploadMessage": fmt.Sprintf("Loaded %d rows from %s, skipped %d.", up.result.Valid, up.filename, up.result.Dropped),
		"uploads":       time.Now().UnixMilli(),
	})
}
