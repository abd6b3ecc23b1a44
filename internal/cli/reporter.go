package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"somikra/internal/report"
)

const textTemplate = `{{.Insight.Title}} ({{.Granularity}})
Total sales: ${{.Summary.TotalSales.StringFixed 2}} from {{.Summary.Orders}} orders, {{.Summary.TotalQuantity}} units
Customers: {{.Summary.UniqueCustomers}}  AOV: ${{.Summary.AverageOrderValue.StringFixed 2}}  Per period: ${{.Summary.AveragePerPeriod.StringFixed 2}}
Trend: {{.Insight.Trend}} ({{.Insight.GrowthRate.StringFixed 1}}%)

=== Periods ===
{{range .Buckets}}{{printf "%-12s" .PeriodKey}} ${{.TotalSales.StringFixed 2}}  {{.TotalQuantity}} units  {{.UniqueCustomers}} customers
{{end}}
=== Top products ===
{{range $i, $e := .Rankings.Products}}{{inc $i}}. {{$e.Label}}: ${{$e.TotalSales.StringFixed 2}}
{{end}}
=== Top customers ===
{{range $i, $e := .Rankings.Customers}}{{inc $i}}. {{$e.Label}}: ${{$e.TotalSales.StringFixed 2}}
{{end}}
=== Top regions ===
{{range $i, $e := .Rankings.Regions}}{{inc $i}}. {{$e.Label}}: ${{$e.TotalSales.StringFixed 2}}
{{end}}
=== Insights ===
{{range .Insight.Lines}}- {{.}}
{{end}}`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(textTemplate))

// Reporter writes reports to the terminal.
type Reporter struct {
	writer io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{writer: w}
}

func (r *Reporter) Text(rep report.Report) error {
	if err := reportTemplate.Execute(r.writer, rep); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func (r *Reporter) JSON(rep report.Report) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
