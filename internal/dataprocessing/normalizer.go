package dataprocessing

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"p2pcli/internal/errors"
	"p2pcli/pkg/contracts/domain"
)

// Column captions the snapshot export must carry. Values in the GR and IR
// columns may be blank; the columns themselves are still required.
const (
	colVendorName     = "Vendor Name"
	colVendorNumber   = "Vendor Number"
	colEntityName     = "Entity Name"
	colCategory       = "IT/NON-IT"
	colMaterial       = "Material Description"
	colServiceArea    = "Service Area"
	colPONumber       = "Purchasing Document Number"
	colDocumentDate   = "Document Date"
	colDeliveryDate   = "Delivery Date"
	colOrderedQty     = "Ordered Quantity"
	colDeliveredQty   = "Delivery Quantity"
	colStillToDeliver = "Still to Deliver"
	colOrderedValue   = "PO Ordered Value in Loc. Curr."
	colInvoicedValue  = "PO Invoice Value in Loc. Curr."
	colDownPayment    = "PO Down Payment"
	colGRDocument     = "GR Document Number"
	colIRDocument     = "IR Document Number"
)

var requiredColumns = []string{
	colVendorName, colVendorNumber, colEntityName, colCategory,
	colMaterial, colServiceArea, colPONumber,
	colDocumentDate, colDeliveryDate,
	colOrderedQty, colDeliveredQty, colStillToDeliver,
	colOrderedValue, colInvoicedValue, colDownPayment,
	colGRDocument, colIRDocument,
}

// Date layouts seen in the wild in P2P exports. Excel serial numbers are
// handled separately.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"01/02/2006",
	"1/2/06 15:04",
	"1/2/2006",
	"02-Jan-06",
	time.RFC3339,
}

// Normalizer turns a raw snapshot workbook into typed purchase-order lines.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. A nil logger falls back to the default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger.With(slog.String("component", "normalizer"))}
}

// ParseWorkbook reads the snapshot from an .xlsx file on disk.
func (n *Normalizer) ParseWorkbook(path string) ([]domain.PurchaseOrderLine, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open snapshot workbook", err)
	}
	defer f.Close()
	return n.parse(f)
}

// ParseReader reads the snapshot from an in-memory .xlsx stream.
func (n *Normalizer) ParseReader(r io.Reader) ([]domain.PurchaseOrderLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to read snapshot workbook", err)
	}
	defer f.Close()
	return n.parse(f)
}

func (n *Normalizer) parse(f *excelize.File) ([]domain.PurchaseOrderLine, error) {
	rows, sheetName, headerRow, columnMap, err := n.locateData(f)
	if err != nil {
		return nil, err
	}

	n.logger.Info("located snapshot data",
		slog.String("sheet", sheetName),
		slog.Int("header_row", headerRow),
		slog.Int("total_rows", len(rows)))

	lines := make([]domain.PurchaseOrderLine, 0, len(rows)-headerRow-1)
	var badCells int

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		line := domain.PurchaseOrderLine{
			VendorName:          cell(row, columnMap[colVendorName]),
			VendorNumber:        cell(row, columnMap[colVendorNumber]),
			EntityName:          cell(row, columnMap[colEntityName]),
			Category:            cell(row, columnMap[colCategory]),
			MaterialDescription: cell(row, columnMap[colMaterial]),
			ServiceArea:         cell(row, columnMap[colServiceArea]),
			PONumber:            cell(row, columnMap[colPONumber]),
			GRDocument:          cell(row, columnMap[colGRDocument]),
			IRDocument:          cell(row, columnMap[colIRDocument]),
		}

		line.DocumentDate = parseDate(cell(row, columnMap[colDocumentDate]))
		line.DeliveryDate = parseDate(cell(row, columnMap[colDeliveryDate]))
		line.OrderedQuantity = parseAmount(cell(row, columnMap[colOrderedQty]))
		line.DeliveredQuantity = parseAmount(cell(row, columnMap[colDeliveredQty]))
		line.StillToDeliver = parseAmount(cell(row, columnMap[colStillToDeliver]))
		line.OrderedValue = parseAmount(cell(row, columnMap[colOrderedValue]))
		line.InvoicedValue = parseAmount(cell(row, columnMap[colInvoicedValue]))
		line.DownPayment = parseAmount(cell(row, columnMap[colDownPayment]))
		line.Period = periodOf(line.DocumentDate)

		if bad := countNullCoercions(row, columnMap, line); bad > 0 {
			badCells += bad
			n.logger.Debug("row has unparseable cells",
				slog.Int("row", i+1),
				slog.Int("cells", bad))
		}

		lines = append(lines, line)
	}

	if badCells > 0 {
		n.logger.Warn("snapshot contains unparseable cells, carried as nulls",
			slog.Int("cell_count", badCells))
	}
	if len(lines) == 0 {
		n.logger.Warn("snapshot contains no data rows")
	}

	n.logger.Info("normalized snapshot", slog.Int("line_count", len(lines)))
	return lines, nil
}

// locateData finds the sheet and header row carrying the P2P export. The
// header row is the first row naming both the purchasing document and vendor
// columns; once found, every required column must be present or the whole
// run fails with a schema mismatch.
func (n *Normalizer) locateData(f *excelize.File) ([][]string, string, int, map[string]int, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		for i, row := range rows {
			captions := captionIndex(row)
			_, hasPO := captions[colPONumber]
			_, hasVendor := captions[colVendorName]
			if !hasPO || !hasVendor {
				continue
			}

			var missing []string
			for _, col := range requiredColumns {
				if _, ok := captions[col]; !ok {
					missing = append(missing, col)
				}
			}
			if len(missing) > 0 {
				return nil, "", 0, nil, errors.NewSchemaError(missing)
			}
			return rows, name, i, captions, nil
		}
	}
	// No sheet carries anything resembling the export header: wrong file.
	return nil, "", 0, nil, errors.NewSchemaError(requiredColumns)
}

// captionIndex maps trimmed column captions to their position in the row.
func captionIndex(row []string) map[string]int {
	captions := make(map[string]int, len(row))
	for j, c := range row {
		c = strings.TrimSpace(c)
		if c != "" {
			captions[c] = j
		}
	}
	return captions
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate coerces a cell to a date. Unparseable input yields a null date,
// never an error. Numeric cells are treated as Excel serial dates.
func parseDate(s string) domain.Date {
	if s == "" {
		return domain.Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.NewDate(t)
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return domain.NewDate(t)
		}
	}
	return domain.Date{}
}

// parseAmount coerces a cell to a numeric value. Thousands separators are
// stripped; anything else unparseable yields a null amount.
func parseAmount(s string) domain.Amount {
	if s == "" {
		return domain.Amount{}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return domain.Amount{}
	}
	return domain.NewAmount(v)
}

// periodOf buckets a document date at month granularity ("2024-03").
func periodOf(d domain.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01")
}

// countNullCoercions counts cells that held text but did not coerce. Empty
// source cells are legitimate nulls and are not counted.
func countNullCoercions(row []string, columnMap map[string]int, line domain.PurchaseOrderLine) int {
	bad := 0
	if !line.DocumentDate.Valid && cell(row, columnMap[colDocumentDate]) != "" {
		bad++
	}
	if !line.DeliveryDate.Valid && cell(row, columnMap[colDeliveryDate]) != "" {
		bad++
	}
	numeric := []struct {
		col string
		val domain.Amount
	}{
		{colOrderedQty, line.OrderedQuantity},
		{colDeliveredQty, line.DeliveredQuantity},
		{colStillToDeliver, line.StillToDeliver},
		{colOrderedValue, line.OrderedValue},
		{colInvoicedValue, line.InvoicedValue},
		{colDownPayment, line.DownPayment},
	}
	for _, c := range numeric {
		if !c.val.Valid && cell(row, columnMap[c.col]) != "" {
			bad++
		}
	}
	return bad
}
