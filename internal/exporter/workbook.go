package exporter

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"p2pcli/internal/dataprocessing"
	"p2pcli/internal/errors"
)

// WorkbookWriter renders a pipeline result into a multi-sheet Excel report,
// one sheet per table, headers first, column order fixed by Sheets.
type WorkbookWriter struct {
	logger     *slog.Logger
	dateFormat string
}

// NewWorkbookWriter creates a workbook writer. A nil logger falls back to
// the default; an empty date format falls back to ISO dates.
func NewWorkbookWriter(logger *slog.Logger, dateFormat string) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}
	return &WorkbookWriter{
		logger:     logger.With(slog.String("component", "workbook_writer")),
		dateFormat: dateFormat,
	}
}

// Write renders the report to a file, creating parent directories as
// needed.
func (w *WorkbookWriter) Write(path string, result *dataprocessing.PipelineResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create report directory", err)
	}

	f, err := w.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save report workbook", err)
	}

	w.logger.Info("wrote report workbook",
		slog.String("path", path),
		slog.Int("sheet_count", len(dataprocessing.TableNames())))
	return nil
}

// WriteTo streams the report, for HTTP download.
func (w *WorkbookWriter) WriteTo(out io.Writer, result *dataprocessing.PipelineResult) error {
	f, err := w.build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return errors.NewStorageError("failed to stream report workbook", err)
	}
	return nil
}

func (w *WorkbookWriter) build(result *dataprocessing.PipelineResult) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, sheet := range Sheets(result, w.dateFormat) {
		if i == 0 {
			// Rename the default sheet instead of leaving an empty Sheet1.
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				f.Close()
				return nil, errors.NewStorageError("failed to rename report sheet", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				f.Close()
				return nil, errors.NewStorageError("failed to add report sheet", err)
			}
		}

		header := make([]interface{}, len(sheet.Headers))
		for j, h := range sheet.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
			f.Close()
			return nil, errors.NewStorageError("failed to write sheet header", err)
		}

		for rowIdx, row := range sheet.Rows {
			addr, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, errors.NewStorageError("failed to compute cell address", err)
			}
			rowCopy := row
			if err := f.SetSheetRow(sheet.Name, addr, &rowCopy); err != nil {
				f.Close()
				return nil, errors.NewStorageError("failed to write sheet row", err)
			}
		}
	}

	return f, nil
}
