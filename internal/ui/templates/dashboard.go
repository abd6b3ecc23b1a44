package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"somikra/internal/report"
)

const datastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>SOMIKRA Growth Dashboard</title>
<script type="module" src="{{.Script}}"></script>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7fb;color:#1d2230}
header{padding:24px 32px;background:#1d2230;color:#fff}
main{display:grid;grid-template-columns:320px 1fr;gap:24px;padding:24px 32px}
.card{background:#fff;border-radius:12px;padding:20px;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.modern-table{width:100%;border-collapse:collapse}.modern-table td,.modern-table th{padding:6px 8px;border-bottom:1px solid #eee;text-align:left}
.trend-growth{color:#0a7d38}.trend-decline{color:#b42318}
label{display:block;margin-top:12px;font-size:14px}
</style>
</head>
<body data-signals='{"filters":{"type":"sales_overview","granularity":"daily","start":"","end":"","products":[],"regions":[],"customers":[]},"report":null,"reportError":"","recordCount":0,"uploads":0,"uploadMessage":""}'>
<header>
<h1>SOMIKRA Growth Dashboard</h1>
<p>Sales reports for DTC brands. Your data stays in this session: we don't save a thing.</p>
</header>
<main>
<section class="card" data-init="@get('/sse/filters')">
<h2>Filters</h2>
<label>Report
<select data-bind="filters.type" data-on:change="@get('/sse/report')">
{{range .ReportTypes}}<option value="{{.Value}}">{{.Label}}</option>
{{end}}</select></label>
<label>Period
<select data-bind="filters.granularity" data-on:change="@get('/sse/report')">
<option value="daily">Daily</option>
<option value="weekly">Weekly</option>
<option value="monthly">Monthly</option>
</select></label>
<label>From <input type="date" data-bind="filters.start" data-on:change="@get('/sse/report')"></label>
<label>To <input type="date" data-bind="filters.end" data-on:change="@get('/sse/report')"></label>
<div id="filter-options"></div>
<h2>Your data</h2>
<p><span data-text="$recordCount"></span> records loaded.</p>
<form enctype="multipart/form-data" data-on:submit="@post('/sse/upload', {contentType: 'form'})">
<input type="file" name="file" accept=".csv,.xlsx" required>
<label><input type="checkbox" name="replace" value="true"> Replace current data</label>
<button type="submit">Upload</button>
</form>
<p class="upload-message" data-show="$uploadMessage" data-text="$uploadMessage"></p>
<div hidden data-effect="$uploads && @get('/sse/report')"></div>
<p><a href="/api/sample.csv">Download the sample CSV</a></p>
</section>
<section class="card">
<h2>Report</h2>
<p class="error" data-show="$reportError" data-text="$reportError"></p>
<div id="insight-content" data-init="@get('/sse/report')">Loading report…</div>
</section>
</main>
</body>
</html>
`))

type reportOption struct {
	Value string
	Label string
}

var reportLabels = map[report.ReportType]string{
	report.SalesOverview:      "Sales overview",
	report.ProductPerformance: "Product performance",
	report.CustomerAnalysis:   "Customer insights",
	report.RegionalBreakdown:  "Regional performance",
}

// Dashboard renders the tools dashboard shell. Report content is streamed in
// over SSE once the page loads.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		opts := make([]reportOption, 0, len(reportLabels))
		for _, rt := range report.ReportTypes() {
			opts = append(opts, reportOption{Value: string(rt), Label: reportLabels[rt]})
		}
		return dashboardTemplate.Execute(w, struct {
			Script      string
			ReportTypes []reportOption
		}{Script: datastarCDN, ReportTypes: opts})
	})
}
