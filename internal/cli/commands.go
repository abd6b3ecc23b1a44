package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"somikra/internal/models"
	"somikra/internal/report"
	"somikra/internal/services"
)

type reportCmd struct {
	file        string
	reportType  string
	granularity string
	start       string
	end         string
	products    []string
	regions     []string
	customers   []string
	asJSON      bool
	parser      *services.Parser
	reporter    *Reporter
}

func newReportCmd(parser *services.Parser, reporter *Reporter) *cobra.Command {
	rc := &reportCmd{parser: parser, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a sales report from a CSV or XLSX file",
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.file, "file", "f", "", "Path to a .csv or .xlsx file of sales")
	cmd.Flags().StringVarP(&rc.reportType, "type", "t", string(report.SalesOverview), "Report type")
	cmd.Flags().StringVarP(&rc.granularity, "granularity", "g", string(models.Daily), "Bucket size: daily, weekly or monthly")
	cmd.Flags().StringVar(&rc.start, "start", "", "First day to include (2006-01-02)")
	cmd.Flags().StringVar(&rc.end, "end", "", "Last day to include (2006-01-02)")
	cmd.Flags().StringArrayVar(&rc.products, "product", nil, "Only include this product (repeatable)")
	cmd.Flags().StringArrayVar(&rc.regions, "region", nil, `Only include this region, e.g. "CA, USA" (repeatable)`)
	cmd.Flags().StringArrayVar(&rc.customers, "customer", nil, "Only include this customer (repeatable)")
	cmd.Flags().BoolVar(&rc.asJSON, "json", false, "Print the report as JSON")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (rc *reportCmd) request() (report.Request, error) {
	rt, ok := report.ParseReportType(rc.reportType)
	if !ok {
		return report.Request{}, fmt.Errorf("unknown report type %q, supported: %v", rc.reportType, report.ReportTypes())
	}
	g, ok := models.ParseGranularity(rc.granularity)
	if !ok {
		return report.Request{}, fmt.Errorf("unknown granularity %q", rc.granularity)
	}

	var dr models.DateRange
	var err error
	if rc.start != "" {
		if dr.Start, err = services.ParseDate(rc.start); err != nil {
			return report.Request{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if rc.end != "" {
		if dr.End, err = services.ParseDate(rc.end); err != nil {
			return report.Request{}, fmt.Errorf("invalid --end: %w", err)
		}
	}

	return report.Request{
		Type:        rt,
		Granularity: g,
		Filter: models.FilterState{
			Range:     dr,
			Products:  rc.products,
			Regions:   rc.regions,
			Customers: rc.customers,
		},
	}, nil
}

func (rc *reportCmd) run(cmd *cobra.Command, args []string) error {
	req, err := rc.request()
	if err != nil {
		return err
	}

	f, err := os.Open(rc.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rc.file, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	parsed, err := rc.parser.ParseFile(ctx, rc.file, f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", rc.file, err)
	}
	if parsed.Dropped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d of %d rows\n", parsed.Dropped, parsed.Rows)
	}

	rep := report.Build(parsed.Records, req)
	if rc.asJSON {
		return rc.reporter.JSON(rep)
	}
	return rc.reporter.Text(rep)
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Print a sample CSV with the expected columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(services.SampleCSV())
			return err
		},
	}
}
