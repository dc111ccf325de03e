// Package dataprocessing implements the P2P analytics pipeline: it turns one
// raw procure-to-pay snapshot into the reconciled tables the presentation
// layer consumes.
//
// The pipeline is a single-pass batch transform with strictly forward data
// flow:
//
//	Normalizer -> Deriver -> { Aggregator, Variance extraction }
//
// The Normalizer parses the uploaded workbook into typed purchase-order
// lines, coercing dates and numeric cells and turning unparseable values
// into explicit nulls. The Deriver computes per-line analytics fields from
// the normalized fields plus one injected processing instant. The Aggregator
// groups lines into spend, trend and delivery summary tables, and the
// variance extractors project the audit subsets (delayed POs, quantity
// errors, over- and under-billing cases).
//
// A run is deterministic and side-effect free: the same snapshot and the
// same instant always produce identical tables, and nothing in the pipeline
// mutates shared state between runs. The only fatal failure is a snapshot
// whose required columns are missing; every per-cell anomaly degrades to a
// null-safe value instead of aborting the batch.
package dataprocessing
