package services

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "date,product,state,country,customer,sales,quantity\n"

func TestParser_ParseCSV_ValidData(t *testing.T) {
	p := NewParser(4, nil)
	input := header +
		"2025-01-01,Serum,CA,USA,Ava,100.00,2\n" +
		"2025/1/2,Cleanser,NY,USA,Ben,\"$1,050.50\",1\n"

	res, err := p.ParseCSV(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 0, res.Dropped)
	assert.Equal(t, "Serum", res.Records[0].Product)
	assert.Equal(t, "1050.5", res.Records[1].Sales.String())
	assert.Equal(t, "2025-01-02", res.Records[1].Date.Format("2006-01-02"))
	assert.NotEmpty(t, res.Records[0].ID)
	assert.NotEqual(t, res.Records[0].ID, res.Records[1].ID)
}

func TestParser_ParseCSV_DropsRowMissingProduct(t *testing.T) {
	p := NewParser(2, nil)
	input := header +
		"2025-01-01,Serum,CA,USA,Ava,100,1\n" +
		"2025-01-02,,NY,USA,Ben,50,1\n" +
		"2025-01-03,Toner,ON,Canada,Cleo,30,3\n"

	res, err := p.ParseCSV(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Valid)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "Serum", res.Records[0].Product)
	assert.Equal(t, "Toner", res.Records[1].Product)
}

func TestParser_ParseCSV_DropsInvalidRows(t *testing.T) {
	p := NewParser(2, nil)
	input := header +
		"not-a-date,Serum,CA,USA,Ava,100,1\n" +
		"2025-01-02,Serum,CA,USA,,100,1\n" +
		"2025-01-02,Serum,CA,USA,Ava,-5,1\n" +
		"2025-01-02,Serum,CA,USA,Ava,abc,1\n" +
		"2025-01-02,Serum,CA,USA,Ava,5,-1\n" +
		"2025-01-02,Serum,CA,USA,Ava,5,1\n"

	res, err := p.ParseCSV(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 5, res.Dropped)
}

func TestParser_ParseCSV_DropsMalformedRow(t *testing.T) {
	p := NewParser(2, nil)
	input := header +
		"2025-01-01,Serum,CA,USA,Ava,100,1\n" +
		"2025-01-02,Bad \"quote,NY,USA,Ben,5,1\n" +
		"2025-01-03,Toner,ON,Canada,Cleo,30,3\n"

	res, err := p.ParseCSV(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Valid)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "Serum", res.Records[0].Product)
	assert.Equal(t, "Toner", res.Records[1].Product)
}

func TestParser_ParseCSV_MalformedHeader(t *testing.T) {
	_, err := NewParser(1, nil).ParseCSV(context.Background(), strings.NewReader("date,pro\"duct\n2025-01-01,A\n"))

	var parseErr *csv.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParser_ParseCSV_TimestampsAndDecimalQuantity(t *testing.T) {
	p := NewParser(2, nil)
	input := header +
		"2025-01-01T10:00:00Z,Serum,CA,USA,Ava,7.5,1.0\n" +
		"2025-01-02 23:15:00,Toner,NY,USA,Ben,20,2\n" +
		"2025-01-03,Mask,ON,Canada,Cleo,5,1.5\n"

	res, err := p.ParseCSV(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Equal(t, 2, res.Valid)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), res.Records[0].Date)
	assert.Equal(t, 1, res.Records[0].Quantity)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), res.Records[1].Date)
	assert.Equal(t, 2, res.Records[1].Quantity)
}

func TestParser_ParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want error
	}{
		{"empty file", "", ErrEmptyFile},
		{"header only", header, ErrNoValidRows},
		{"no valid rows", header + ",Serum,CA,USA,Ava,1,1\n", ErrNoValidRows},
	}

	p := NewParser(2, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseCSV(context.Background(), strings.NewReader(tt.csv))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParser_ParseCSV_MissingColumns(t *testing.T) {
	p := NewParser(2, nil)

	_, err := p.ParseCSV(context.Background(), strings.NewReader("date,product,sales\n2025-01-01,A,1\n"))

	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"state", "country", "customer", "quantity"}, missing.Columns)
}

func TestParser_ParseCSV_HeaderCaseAndOrder(t *testing.T) {
	p := NewParser(1, nil)
	input := "Quantity,Sales,Customer,Country,State,Product,Date,userId\n" +
		"2,20,Ava,USA,CA,Serum,2025-03-01,u-1\n"

	res, err := p.ParseCSV(context.Background(), strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 2, res.Records[0].Quantity)
	assert.Equal(t, "u-1", res.Records[0].UserID)
}

func TestParser_ParseCSV_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(2, nil).ParseCSV(ctx, strings.NewReader(header+"2025-01-01,A,CA,USA,Ava,1,1\n"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestParser_ParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"date", "product", "state", "country", "customer", "sales", "quantity"},
		{"2025-01-01", "Serum", "CA", "USA", "Ava", "59.99", "1"},
		{"2025-01-02", "", "NY", "USA", "Ben", "10", "1"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := NewParser(2, nil).ParseFile(context.Background(), "sales.XLSX", buf)

	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "59.99", res.Records[0].Sales.String())
	assert.Equal(t, 1, res.Dropped)
}

func TestParser_ParseFile_Unsupported(t *testing.T) {
	_, err := NewParser(1, nil).ParseFile(context.Background(), "sales.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSampleCSV_Parses(t *testing.T) {
	res, err := NewParser(1, nil).ParseCSV(context.Background(), strings.NewReader(string(SampleCSV())))

	require.NoError(t, err)
	assert.Equal(t, 2, res.Valid)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-02-03", "2025/2/3", "2/3/2025", "2025-02-03T23:59:59-05:00", "2025-02-03 08:30:00"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), d, s)
	}
	_, err := ParseDate("03.02.2025")
	assert.Error(t, err)
}
