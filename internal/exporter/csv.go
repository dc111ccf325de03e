package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"p2pcli/internal/dataprocessing"
)

// CSVWriter dumps pipeline tables as one CSV file per table.
type CSVWriter struct {
	logger *slog.Logger
	dir    string
}

// NewCSVWriter creates a CSV writer rooted at dir.
func NewCSVWriter(logger *slog.Logger, dir string) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		logger: logger.With(slog.String("component", "csv_writer")),
		dir:    dir,
	}
}

// WriteAll writes every table of the result into the writer's directory,
// one file per table, named after the table.
func (w *CSVWriter) WriteAll(result *dataprocessing.PipelineResult, dateFormat string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create CSV directory: %w", err)
	}

	for _, sheet := range Sheets(result, dateFormat) {
		path := filepath.Join(w.dir, fileName(sheet.Name))
		if err := w.writeSheet(path, sheet); err != nil {
			return err
		}
	}

	w.logger.Info("wrote CSV tables",
		slog.String("dir", w.dir),
		slog.Int("table_count", len(dataprocessing.TableNames())))
	return nil
}

func (w *CSVWriter) writeSheet(path string, sheet Sheet) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	// UTF-8 BOM helps Excel recognize the encoding.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(sheet.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, row := range sheet.Rows {
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = formatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// fileName turns a table name into a safe CSV file name.
func fileName(table string) string {
	name := strings.ToLower(table)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "(", "")
	name = strings.ReplaceAll(name, ")", "")
	name = strings.ReplaceAll(name, "%", "pct")
	return name + ".csv"
}
