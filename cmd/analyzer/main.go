// Command analyzer runs the P2P analytics pipeline over one snapshot
// workbook and writes the full multi-sheet report, optionally dumping every
// table as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"p2pcli/internal/config"
	"p2pcli/internal/dataprocessing"
	"p2pcli/internal/errors"
	"p2pcli/internal/exporter"
	"p2pcli/internal/infrastructure"
)

func main() {
	inPath := flag.String("in", "", "path to the P2P snapshot .xlsx export (required)")
	outPath := flag.String("out", "P2P_Analysis_Report.xlsx", "output report path, relative paths resolve inside the reports directory")
	csvDir := flag.String("csv", "", "also dump every table as CSV into this directory")
	topN := flag.Int("top", 0, "override the ranked-table size (default from config)")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyzer -in snapshot.xlsx [-out report.xlsx] [-csv dir]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *topN > 0 {
		cfg.Report.TopN = *topN
	}

	ctx := context.Background()
	pipeline := dataprocessing.NewPipeline(logger, dataprocessing.AggregatorConfig{TopN: cfg.Report.TopN})

	logger.Info("starting P2P snapshot analysis",
		slog.String("input", *inPath),
		slog.Int("top_n", cfg.Report.TopN))

	start := time.Now()
	result, err := pipeline.RunFile(ctx, *inPath, time.Now())
	if err != nil {
		if errors.IsSchemaError(err) {
			logger.Error("snapshot does not match the expected P2P export schema",
				slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "schema mismatch: %v\n", err)
			os.Exit(1)
		}
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reportPath := cfg.ReportPath(*outPath)
	workbook := exporter.NewWorkbookWriter(logger, cfg.Report.DateFormat)
	if err := workbook.Write(reportPath, result); err != nil {
		logger.Error("failed to write report workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *csvDir != "" {
		csv := exporter.NewCSVWriter(logger, *csvDir)
		if err := csv.WriteAll(result, cfg.Report.DateFormat); err != nil {
			logger.Error("failed to write CSV tables", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("analysis complete",
		slog.String("snapshot_id", result.SnapshotID),
		slog.String("report", reportPath),
		slog.Int("lines", len(result.Lines)),
		slog.Int("vendors", len(result.VendorSpend)),
		slog.Int("delayed_pos", len(result.DelayedPOs)),
		slog.Int("quantity_errors", len(result.QuantityErrors)),
		slog.Int("overbilling_cases", len(result.Overbilling)),
		slog.Int("underbilling_cases", len(result.Underbilling)),
		slog.Duration("elapsed", time.Since(start)))
}
