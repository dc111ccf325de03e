// Package exporter writes the pipeline's tables out for downstream
// consumers: a one-shot multi-sheet Excel report with one sheet per table,
// and per-table CSV files. Writers only read the pipeline result; column
// orders are fixed by the sheet definitions in this package.
package exporter
