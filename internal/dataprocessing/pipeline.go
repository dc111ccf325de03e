package dataprocessing

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"p2pcli/pkg/contracts/domain"
)

// Table names as exposed to the presentation layer and used as workbook
// sheet names.
const (
	TableVendorSpend        = "Total Spend by Vendor"
	TableMaterialSpend      = "Total Spend by Material"
	TableServiceAreaSpend   = "Total Spend by Service Area"
	TableTopVendors         = "Top 10 Vendors"
	TableTopMaterials       = "Top 10 Materials"
	TableMonthlyTopVendors  = "Top 10 Vendors Monthly"
	TableVendorDelivery     = "Vendor Analysis"
	TableDelayedPOs         = "Delayed POs"
	TableQuantityErrors     = "Quantity Errors"
	TableOverbilling        = "Overbilling Analysis"
	TableUnderbilling       = "Underbilling Analysis"
	TableMonthlySpendTrend  = "Monthly Spend Trend"
	TableVendorSpendTrend   = "Vendor Spend Trend"
	TableEntitySpend        = "Entity Spend"
	TablePendingDeliveries  = "Pending Deliveries by Vendor"
	TableDownPayments       = "Down Payments by Vendor"
	TableVendorOverbilling  = "Overbilling by Vendor"
	TableVendorUnderbilling = "Underbilling by Vendor"
	TableMonthlyOverbilling = "Monthly Overbilling Trend"
	TableMonthlyUnderbilling = "Monthly Underbilling Trend"
)

// PipelineResult holds every table derived from one snapshot, plus the
// derived record set itself. The result is immutable once returned and is
// held by the presentation layer for the rest of the session; tables are
// never merged across snapshots or persisted.
type PipelineResult struct {
	SnapshotID  string    `json:"snapshot_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Lines []domain.DerivedLine `json:"-"`

	VendorSpend         []domain.VendorSpendRow        `json:"vendor_spend"`
	MaterialSpend       []domain.MaterialSpendRow      `json:"material_spend"`
	ServiceAreaSpend    []domain.ServiceAreaSpendRow   `json:"service_area_spend"`
	TopVendors          []domain.VendorSpendRow        `json:"top_vendors"`
	TopMaterials        []domain.MaterialSpendRow      `json:"top_materials"`
	MonthlyVendorSpend  []domain.MonthlyVendorSpendRow `json:"monthly_vendor_spend"`
	MonthlyTopVendors   []domain.MonthlyVendorSpendRow `json:"monthly_top_vendors"`
	VendorDelivery      []domain.VendorDeliveryRow     `json:"vendor_delivery"`
	MonthlySpendTrend   []domain.PeriodTrendRow        `json:"monthly_spend_trend"`
	VendorSpendTrend    []domain.VendorTrendRow        `json:"vendor_spend_trend"`
	EntitySpend         []domain.EntitySpendRow        `json:"entity_spend"`
	PendingDeliveries   []domain.VendorAmountRow       `json:"pending_deliveries"`
	DownPayments        []domain.VendorAmountRow       `json:"down_payments"`
	VendorOverbilling   []domain.VendorAmountRow       `json:"vendor_overbilling"`
	VendorUnderbilling  []domain.VendorAmountRow       `json:"vendor_underbilling"`
	MonthlyOverbilling  []domain.PeriodAmountRow       `json:"monthly_overbilling"`
	MonthlyUnderbilling []domain.PeriodAmountRow       `json:"monthly_underbilling"`
	DelayedPOs          []domain.DelayedPORow          `json:"delayed_pos"`
	QuantityErrors      []domain.QuantityErrorRow      `json:"quantity_errors"`
	Overbilling         []domain.BillingVarianceRow    `json:"overbilling"`
	Underbilling        []domain.BillingVarianceRow    `json:"underbilling"`
}

// TableNames returns the names of all derived tables in presentation order.
func TableNames() []string {
	return []string{
		TableVendorSpend,
		TableMaterialSpend,
		TableServiceAreaSpend,
		TableTopVendors,
		TableTopMaterials,
		TableMonthlyTopVendors,
		TableVendorDelivery,
		TableDelayedPOs,
		TableQuantityErrors,
		TableOverbilling,
		TableUnderbilling,
		TableMonthlySpendTrend,
		TableVendorSpendTrend,
		TableEntitySpend,
		TablePendingDeliveries,
		TableDownPayments,
		TableVendorOverbilling,
		TableVendorUnderbilling,
		TableMonthlyOverbilling,
		TableMonthlyUnderbilling,
	}
}

// Table returns the named table's rows, or false for an unknown name.
func (r *PipelineResult) Table(name string) (interface{}, bool) {
	switch name {
	case TableVendorSpend:
		return r.VendorSpend, true
	case TableMaterialSpend:
		return r.MaterialSpend, true
	case TableServiceAreaSpend:
		return r.ServiceAreaSpend, true
	case TableTopVendors:
		return r.TopVendors, true
	case TableTopMaterials:
		return r.TopMaterials, true
	case TableMonthlyTopVendors:
		return r.MonthlyTopVendors, true
	case TableVendorDelivery:
		return r.VendorDelivery, true
	case TableDelayedPOs:
		return r.DelayedPOs, true
	case TableQuantityErrors:
		return r.QuantityErrors, true
	case TableOverbilling:
		return r.Overbilling, true
	case TableUnderbilling:
		return r.Underbilling, true
	case TableMonthlySpendTrend:
		return r.MonthlySpendTrend, true
	case TableVendorSpendTrend:
		return r.VendorSpendTrend, true
	case TableEntitySpend:
		return r.EntitySpend, true
	case TablePendingDeliveries:
		return r.PendingDeliveries, true
	case TableDownPayments:
		return r.DownPayments, true
	case TableVendorOverbilling:
		return r.VendorOverbilling, true
	case TableVendorUnderbilling:
		return r.VendorUnderbilling, true
	case TableMonthlyOverbilling:
		return r.MonthlyOverbilling, true
	case TableMonthlyUnderbilling:
		return r.MonthlyUnderbilling, true
	default:
		return nil, false
	}
}

// Pipeline wires the normalizer, deriver and aggregator into the single
// runPipeline entry point. One Pipeline may process any number of
// snapshots; it keeps no state between runs.
type Pipeline struct {
	logger     *slog.Logger
	normalizer *Normalizer
	aggregator *Aggregator
}

// NewPipeline creates a pipeline. A nil logger falls back to the default.
func NewPipeline(logger *slog.Logger, cfg AggregatorConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:     logger.With(slog.String("component", "pipeline")),
		normalizer: NewNormalizer(logger),
		aggregator: NewAggregator(logger, cfg),
	}
}

// RunFile normalizes the snapshot workbook at path and runs the pipeline
// over it.
func (p *Pipeline) RunFile(ctx context.Context, path string, now time.Time) (*PipelineResult, error) {
	lines, err := p.normalizer.ParseWorkbook(path)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, lines, now)
}

// RunReader normalizes an in-memory snapshot workbook and runs the pipeline
// over it.
func (p *Pipeline) RunReader(ctx context.Context, r io.Reader, now time.Time) (*PipelineResult, error) {
	lines, err := p.normalizer.ParseReader(r)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, lines, now)
}

// Run derives the analytics fields and computes every table. The aggregate
// tables only read the derived set, so they are computed as a read-only
// fan-out; each goroutine writes disjoint result fields. An empty snapshot
// yields empty tables, not an error.
func (p *Pipeline) Run(ctx context.Context, lines []domain.PurchaseOrderLine, now time.Time) (*PipelineResult, error) {
	p.logger.InfoContext(ctx, "running analytics pipeline",
		slog.Int("line_count", len(lines)),
		slog.Time("processing_instant", now))

	derived := Derive(lines, now)

	res := &PipelineResult{
		SnapshotID:  uuid.NewString(),
		GeneratedAt: now,
		Lines:       derived,
	}

	var g errgroup.Group

	g.Go(func() error {
		res.VendorSpend = p.aggregator.VendorSpend(derived)
		res.TopVendors = p.aggregator.TopVendors(res.VendorSpend)
		return nil
	})
	g.Go(func() error {
		res.MaterialSpend = p.aggregator.MaterialSpend(derived)
		res.TopMaterials = p.aggregator.TopMaterials(res.MaterialSpend)
		return nil
	})
	g.Go(func() error {
		res.ServiceAreaSpend = p.aggregator.ServiceAreaSpend(derived)
		return nil
	})
	g.Go(func() error {
		res.MonthlyVendorSpend = p.aggregator.MonthlyVendorSpend(derived)
		res.MonthlyTopVendors = p.aggregator.MonthlyTopVendors(res.MonthlyVendorSpend)
		return nil
	})
	g.Go(func() error {
		res.VendorDelivery = p.aggregator.VendorDeliverySummary(derived)
		return nil
	})
	g.Go(func() error {
		res.MonthlySpendTrend = p.aggregator.MonthlySpendTrend(derived)
		res.VendorSpendTrend = p.aggregator.VendorSpendTrend(derived)
		res.EntitySpend = p.aggregator.EntitySpend(derived)
		return nil
	})
	g.Go(func() error {
		res.PendingDeliveries = p.aggregator.PendingDeliveriesByVendor(derived)
		res.DownPayments = p.aggregator.DownPaymentsByVendor(derived)
		return nil
	})
	g.Go(func() error {
		res.VendorOverbilling = p.aggregator.VendorOverbilling(derived)
		res.VendorUnderbilling = p.aggregator.VendorUnderbilling(derived)
		res.MonthlyOverbilling = p.aggregator.MonthlyOverbilling(derived)
		res.MonthlyUnderbilling = p.aggregator.MonthlyUnderbilling(derived)
		return nil
	})
	g.Go(func() error {
		res.DelayedPOs = DelayedPOs(derived)
		res.QuantityErrors = QuantityErrors(derived)
		return nil
	})
	g.Go(func() error {
		res.Overbilling = OverbillingCases(derived)
		res.Underbilling = UnderbillingCases(derived)
		return nil
	})

	// The builders never fail; Wait just joins the fan-out.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "pipeline complete",
		slog.String("snapshot_id", res.SnapshotID),
		slog.Int("vendors", len(res.VendorSpend)),
		slog.Int("delayed_pos", len(res.DelayedPOs)),
		slog.Int("overbilling_cases", len(res.Overbilling)),
		slog.Int("underbilling_cases", len(res.Underbilling)))

	return res, nil
}
