package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"somikra/internal/models"
)

var (
	ErrNoValidRows       = errors.New("no valid records found")
	ErrEmptyFile         = errors.New("empty file")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// RequiredColumns must all be present in an upload's header row.
var RequiredColumns = []string{"date", "product", "state", "country", "customer", "sales", "quantity"}

var dateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/1/2",
	"1/2/2006",
}

type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

type ParseResult struct {
	Records []models.SaleRecord `json:"-"`
	Rows    int                 `json:"rows"`
	Valid   int                 `json:"valid"`
	Dropped int                 `json:"dropped"`
}

type Parser struct {
	workers int
	logger  *slog.Logger
}

func NewParser(workers int, logger *slog.Logger) *Parser {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{workers: workers, logger: logger}
}

// ParseFile picks a decoder from the file extension.
func (p *Parser) ParseFile(ctx context.Context, name string, r io.Reader) (ParseResult, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return p.ParseCSV(ctx, r)
	case ".xlsx":
		return p.ParseXLSX(ctx, r)
	default:
		return ParseResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

func (p *Parser) ParseCSV(ctx context.Context, r io.Reader) (ParseResult, error) {
	rows, err := readCSV(r)
	if err != nil {
		return ParseResult{}, err
	}
	return p.parseRows(ctx, rows)
}

// readCSV reads r one record at a time. A row the csv package cannot parse
// becomes a nil row, which parseRows counts as dropped; a malformed header
// or an I/O error fails the whole read.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) && len(rows) > 0 {
			rows = append(rows, nil)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
}

func (p *Parser) ParseXLSX(ctx context.Context, r io.Reader) (ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return ParseResult{}, fmt.Errorf("read xlsx rows: %w", err)
	}
	return p.parseRows(ctx, rows)
}

type columnIndex map[string]int

func (c columnIndex) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func indexHeader(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name == "userid" {
			name = "user_id"
		}
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

func (p *Parser) parseRows(ctx context.Context, rows [][]string) (ParseResult, error) {
	if len(rows) == 0 {
		return ParseResult{}, ErrEmptyFile
	}
	idx, err := indexHeader(rows[0])
	if err != nil {
		return ParseResult{}, err
	}
	body := rows[1:]

	type parsed struct {
		rec   models.SaleRecord
		valid bool
	}
	slots := make([]parsed, len(body))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, row := range body {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := parseRecord(idx, row)
			if err != nil {
				return nil // dropped rows are counted below
			}
			slots[i] = parsed{rec: rec, valid: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ParseResult{}, err
	}

	result := ParseResult{Rows: len(body), Records: make([]models.SaleRecord, 0, len(body))}
	for _, s := range slots {
		if s.valid {
			result.Records = append(result.Records, s.rec)
		}
	}
	result.Valid = len(result.Records)
	result.Dropped = result.Rows - result.Valid

	if result.Valid == 0 {
		return result, ErrNoValidRows
	}
	if result.Dropped > 0 {
		p.logger.Debug("dropped invalid rows", "dropped", result.Dropped, "valid", result.Valid)
	}
	return result, nil
}

func parseRecord(idx columnIndex, row []string) (models.SaleRecord, error) {
	rawDate := idx.get(row, "date")
	product := idx.get(row, "product")
	if rawDate == "" || product == "" {
		return models.SaleRecord{}, errors.New("missing date or product")
	}

	date, err := ParseDate(rawDate)
	if err != nil {
		return models.SaleRecord{}, err
	}

	sales := decimal.Zero
	if raw := cleanAmount(idx.get(row, "sales")); raw != "" {
		sales, err = decimal.NewFromString(raw)
		if err != nil {
			return models.SaleRecord{}, fmt.Errorf("sales: %w", err)
		}
	}

	quantity := 0
	if raw := cleanAmount(idx.get(row, "quantity")); raw != "" {
		q, err := decimal.NewFromString(raw)
		if err != nil {
			return models.SaleRecord{}, fmt.Errorf("quantity: %w", err)
		}
		if !q.IsInteger() {
			return models.SaleRecord{}, fmt.Errorf("quantity %s is not a whole number", raw)
		}
		quantity = int(q.IntPart())
	}

	rec := models.SaleRecord{
		ID:       uuid.NewString(),
		UserID:   idx.get(row, "user_id"),
		Date:     date,
		Product:  product,
		State:    idx.get(row, "state"),
		Country:  idx.get(row, "country"),
		Customer: idx.get(row, "customer"),
		Sales:    sales,
		Quantity: quantity,
	}
	if !rec.Valid() {
		return models.SaleRecord{}, errors.New("invalid record")
	}
	return rec, nil
}

// ParseDate accepts ISO dates, the slash layouts spreadsheets export and the
// timestamps store exports carry. The time of day is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func cleanAmount(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	return strings.ReplaceAll(s, ",", "")
}
