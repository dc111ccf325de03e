package exporter

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"p2pcli/internal/dataprocessing"
	"p2pcli/pkg/contracts/domain"
)

func sampleResult(t *testing.T) *dataprocessing.PipelineResult {
	t.Helper()

	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	lines := []domain.PurchaseOrderLine{
		{
			PONumber:      "PO-1",
			VendorName:    "Vendor A",
			VendorNumber:  "100001",
			EntityName:    "Entity One",
			Category:      "IT",
			DocumentDate:  domain.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
			Period:        "2024-03",
			OrderedValue:  domain.NewAmount(1000),
			InvoicedValue: domain.NewAmount(1200),
			GRDocument:    "GR-1",
		},
		{
			PONumber:      "PO-2",
			VendorName:    "Vendor B",
			VendorNumber:  "100002",
			EntityName:    "Entity One",
			Category:      "NON-IT",
			DocumentDate:  domain.NewDate(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
			Period:        "2024-04",
			OrderedValue:  domain.NewAmount(300),
			InvoicedValue: domain.NewAmount(250),
			GRDocument:    "GR-2",
			IRDocument:    "IR-2",
		},
	}

	p := dataprocessing.NewPipeline(nil, dataprocessing.DefaultAggregatorConfig())
	result, err := p.Run(context.Background(), lines, now)
	require.NoError(t, err)
	return result
}

func TestWorkbookWriter_Write(t *testing.T) {
	result := sampleResult(t)
	path := filepath.Join(t.TempDir(), "reports", "report.xlsx")

	w := NewWorkbookWriter(nil, "")
	require.NoError(t, w.Write(path, result))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, dataprocessing.TableNames(), f.GetSheetList())

	// Vendor spend sheet: header plus the two vendor rows.
	cell := func(sheet, addr string) string {
		v, err := f.GetCellValue(sheet, addr)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Vendor Name", cell(dataprocessing.TableVendorSpend, "A1"))
	assert.Equal(t, "Total PO Ordered Value", cell(dataprocessing.TableVendorSpend, "E1"))
	assert.Equal(t, "Vendor A", cell(dataprocessing.TableVendorSpend, "A2"))
	assert.Equal(t, "1000", cell(dataprocessing.TableVendorSpend, "E2"))
	assert.Equal(t, "Vendor B", cell(dataprocessing.TableVendorSpend, "A3"))

	// Overbilling sheet carries the single overbilled line with its variance.
	assert.Equal(t, "PO-1", cell(dataprocessing.TableOverbilling, "A2"))
	assert.Equal(t, "2024-03-01", cell(dataprocessing.TableOverbilling, "B2"))
	assert.Equal(t, "200", cell(dataprocessing.TableOverbilling, "J2"))

	// PO-1 is missing its invoice receipt, so it shows up delayed.
	assert.Equal(t, "PO-1", cell(dataprocessing.TableDelayedPOs, "A2"))
}

func TestWorkbookWriter_WriteTo(t *testing.T) {
	result := sampleResult(t)

	var buf bytes.Buffer
	w := NewWorkbookWriter(nil, "2006-01-02")
	require.NoError(t, w.WriteTo(&buf, result))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), 20)
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", "Vendor A", "Vendor A"},
		{"integer-valued float", float64(1500), "1500"},
		{"fraction rounds to two places", 33.333333, "33.33"},
		{"negative", -50.5, "-50.5"},
		{"int", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}
