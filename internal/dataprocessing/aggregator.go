package dataprocessing

import (
	"log/slog"
	"math"
	"sort"

	"p2pcli/pkg/contracts/domain"
)

// Aggregator groups derived lines into the summary tables. Full grouped
// tables keep insertion order by first appearance; ranked tables use a
// stable descending sort on the primary ordered-value metric so ties keep
// their original order.
type Aggregator struct {
	logger *slog.Logger
	topN   int
}

// AggregatorConfig holds configuration options for the Aggregator.
type AggregatorConfig struct {
	TopN int // number of rows in the ranked tables
}

// DefaultAggregatorConfig returns the configuration used by the report CLI.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{TopN: 10}
}

// NewAggregator creates an aggregator. A nil logger falls back to the
// default; a non-positive TopN falls back to 10.
func NewAggregator(logger *slog.Logger, cfg AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	return &Aggregator{
		logger: logger.With(slog.String("component", "aggregator")),
		topN:   cfg.TopN,
	}
}

// vendorKey is the grouping tuple for vendor-level tables.
type vendorKey struct {
	name, number, entity, category string
}

func lineVendorKey(l *domain.DerivedLine) vendorKey {
	return vendorKey{l.VendorName, l.VendorNumber, l.EntityName, l.Category}
}

// VendorSpend sums ordered, invoiced and down-payment values per vendor
// identity tuple, in order of first appearance.
func (a *Aggregator) VendorSpend(lines []domain.DerivedLine) []domain.VendorSpendRow {
	index := make(map[vendorKey]int)
	rows := []domain.VendorSpendRow{}

	for i := range lines {
		l := &lines[i]
		k := lineVendorKey(l)
		idx, ok := index[k]
		if !ok {
			idx = len(rows)
			index[k] = idx
			rows = append(rows, domain.VendorSpendRow{
				VendorName:   l.VendorName,
				VendorNumber: l.VendorNumber,
				EntityName:   l.EntityName,
				Category:     l.Category,
			})
		}
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
		rows[idx].InvoicedValue += l.InvoicedValue.OrZero()
		rows[idx].DownPayment += l.DownPayment.OrZero()
	}
	return rows
}

// MaterialSpend sums values per material description and category.
func (a *Aggregator) MaterialSpend(lines []domain.DerivedLine) []domain.MaterialSpendRow {
	type key struct{ material, category string }
	index := make(map[key]int)
	rows := []domain.MaterialSpendRow{}

	for i := range lines {
		l := &lines[i]
		k := key{l.MaterialDescription, l.Category}
		idx, ok := index[k]
		if !ok {
			idx = len(rows)
			index[k] = idx
			rows = append(rows, domain.MaterialSpendRow{
				MaterialDescription: l.MaterialDescription,
				Category:            l.Category,
			})
		}
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
		rows[idx].InvoicedValue += l.InvoicedValue.OrZero()
		rows[idx].DownPayment += l.DownPayment.OrZero()
	}
	return rows
}

// ServiceAreaSpend sums values per service area and category.
func (a *Aggregator) ServiceAreaSpend(lines []domain.DerivedLine) []domain.ServiceAreaSpendRow {
	type key struct{ area, category string }
	index := make(map[key]int)
	rows := []domain.ServiceAreaSpendRow{}

	for i := range lines {
		l := &lines[i]
		k := key{l.ServiceArea, l.Category}
		idx, ok := index[k]
		if !ok {
			idx = len(rows)
			index[k] = idx
			rows = append(rows, domain.ServiceAreaSpendRow{
				ServiceArea: l.ServiceArea,
				Category:    l.Category,
			})
		}
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
		rows[idx].InvoicedValue += l.InvoicedValue.OrZero()
		rows[idx].DownPayment += l.DownPayment.OrZero()
	}
	return rows
}

// MonthlyVendorSpend sums values per period and vendor tuple. Lines with a
// null period are excluded rather than summed into a wrong bucket. Rows are
// sorted by period ascending, then ordered value descending, stably.
func (a *Aggregator) MonthlyVendorSpend(lines []domain.DerivedLine) []domain.MonthlyVendorSpendRow {
	type key struct {
		period string
		vendor vendorKey
	}
	index := make(map[key]int)
	rows := []domain.MonthlyVendorSpendRow{}

	for i := range lines {
		l := &lines[i]
		if l.Period == "" {
			continue
		}
		k := key{l.Period, lineVendorKey(l)}
		idx, ok := index[k]
		if !ok {
			idx = len(rows)
			index[k] = idx
			rows = append(rows, domain.MonthlyVendorSpendRow{
				Period:       l.Period,
				VendorName:   l.VendorName,
				VendorNumber: l.VendorNumber,
				EntityName:   l.EntityName,
				Category:     l.Category,
			})
		}
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
		rows[idx].InvoicedValue += l.InvoicedValue.OrZero()
		rows[idx].DownPayment += l.DownPayment.OrZero()
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period < rows[j].Period
		}
		return rows[i].OrderedValue > rows[j].OrderedValue
	})
	return rows
}

// VendorDeliverySummary sums quantities and values per vendor tuple and
// computes the delivered percentage of ordered quantity. The percentage is
// exactly 0 when nothing was ordered; it never divides by zero.
func (a *Aggregator) VendorDeliverySummary(lines []domain.DerivedLine) []domain.VendorDeliveryRow {
	index := make(map[vendorKey]int)
	rows := []domain.VendorDeliveryRow{}

	for i := range lines {
		l := &lines[i]
		k := lineVendorKey(l)
		idx, ok := index[k]
		if !ok {
			idx = len(rows)
			index[k] = idx
			rows = append(rows, domain.VendorDeliveryRow{
				VendorName:   l.VendorName,
				VendorNumber: l.VendorNumber,
				EntityName:   l.EntityName,
				Category:     l.Category,
			})
		}
		rows[idx].OrderedQuantity += l.OrderedQuantity.OrZero()
		rows[idx].DeliveredQuantity += l.DeliveredQuantity.OrZero()
		rows[idx].PendingQuantity += l.StillToDeliver.OrZero()
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
		rows[idx].InvoicedValue += l.InvoicedValue.OrZero()
		rows[idx].DownPayment += l.DownPayment.OrZero()
	}

	for i := range rows {
		if rows[i].OrderedQuantity > 0 {
			rows[i].DeliveryPercentage = round2(100 * rows[i].DeliveredQuantity / rows[i].OrderedQuantity)
		}
	}
	return rows
}

// TopVendors returns the first N vendor spend rows by ordered value,
// descending. Fewer than N distinct vendors returns them all.
func (a *Aggregator) TopVendors(rows []domain.VendorSpendRow) []domain.VendorSpendRow {
	ranked := make([]domain.VendorSpendRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OrderedValue > ranked[j].OrderedValue
	})
	return headVendorSpend(ranked, a.topN)
}

// TopMaterials returns the first N material spend rows by ordered value.
func (a *Aggregator) TopMaterials(rows []domain.MaterialSpendRow) []domain.MaterialSpendRow {
	ranked := make([]domain.MaterialSpendRow, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OrderedValue > ranked[j].OrderedValue
	})
	if len(ranked) > a.topN {
		ranked = ranked[:a.topN]
	}
	return ranked
}

// MonthlyTopVendors keeps the first N rows of each period in an already
// sorted monthly vendor spend table.
func (a *Aggregator) MonthlyTopVendors(monthly []domain.MonthlyVendorSpendRow) []domain.MonthlyVendorSpendRow {
	out := []domain.MonthlyVendorSpendRow{}
	perPeriod := make(map[string]int)
	for _, row := range monthly {
		if perPeriod[row.Period] >= a.topN {
			continue
		}
		perPeriod[row.Period]++
		out = append(out, row)
	}
	return out
}

// MonthlySpendTrend sums ordered and invoiced values per period, ascending.
// Lines with a null period are excluded.
func (a *Aggregator) MonthlySpendTrend(lines []domain.DerivedLine) []domain.PeriodTrendRow {
	index := make(map[string]int)
	rows := []domain.PeriodTrendRow{}

	for i := range lines {
		l := &lines[i]
		if l.Period == "" {
			continue
		}
		idx, ok := index[l.Period]
		if !ok {
			idx = len(rows)
			index[l.Period] = idx
			rows = append(rows, domain.PeriodTrendRow{Period: l.Period})
		}
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
		rows[idx].InvoicedValue += l.InvoicedValue.OrZero()
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows
}

// VendorSpendTrend sums ordered and invoiced values per vendor name.
func (a *Aggregator) VendorSpendTrend(lines []domain.DerivedLine) []domain.VendorTrendRow {
	index := make(map[string]int)
	rows := []domain.VendorTrendRow{}

	for i := range lines {
		l := &lines[i]
		idx, ok := index[l.VendorName]
		if !ok {
			idx = len(rows)
			index[l.VendorName] = idx
			rows = append(rows, domain.VendorTrendRow{VendorName: l.VendorName})
		}
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
		rows[idx].InvoicedValue += l.InvoicedValue.OrZero()
	}
	return rows
}

// EntitySpend sums ordered values per entity name.
func (a *Aggregator) EntitySpend(lines []domain.DerivedLine) []domain.EntitySpendRow {
	index := make(map[string]int)
	rows := []domain.EntitySpendRow{}

	for i := range lines {
		l := &lines[i]
		idx, ok := index[l.EntityName]
		if !ok {
			idx = len(rows)
			index[l.EntityName] = idx
			rows = append(rows, domain.EntitySpendRow{EntityName: l.EntityName})
		}
		rows[idx].OrderedValue += l.OrderedValue.OrZero()
	}
	return rows
}

// PendingDeliveriesByVendor sums ordered-minus-delivered quantity per vendor
// name.
func (a *Aggregator) PendingDeliveriesByVendor(lines []domain.DerivedLine) []domain.VendorAmountRow {
	return a.vendorAmounts(lines, func(l *domain.DerivedLine) (float64, bool) {
		return l.OrderedQuantity.OrZero() - l.DeliveredQuantity.OrZero(), true
	})
}

// DownPaymentsByVendor sums down payments per vendor name.
func (a *Aggregator) DownPaymentsByVendor(lines []domain.DerivedLine) []domain.VendorAmountRow {
	return a.vendorAmounts(lines, func(l *domain.DerivedLine) (float64, bool) {
		return l.DownPayment.OrZero(), true
	})
}

// VendorOverbilling sums positive billing variances per vendor name. Only
// overbilled lines contribute.
func (a *Aggregator) VendorOverbilling(lines []domain.DerivedLine) []domain.VendorAmountRow {
	return a.vendorAmounts(lines, overbilledAmount)
}

// VendorUnderbilling sums underbilled variances per vendor name, reported
// positive.
func (a *Aggregator) VendorUnderbilling(lines []domain.DerivedLine) []domain.VendorAmountRow {
	return a.vendorAmounts(lines, underbilledAmount)
}

// MonthlyOverbilling sums positive billing variances per period.
func (a *Aggregator) MonthlyOverbilling(lines []domain.DerivedLine) []domain.PeriodAmountRow {
	return a.periodAmounts(lines, overbilledAmount)
}

// MonthlyUnderbilling sums underbilled variances per period, reported
// positive.
func (a *Aggregator) MonthlyUnderbilling(lines []domain.DerivedLine) []domain.PeriodAmountRow {
	return a.periodAmounts(lines, underbilledAmount)
}

// vendorAmounts folds one metric per vendor name in first-appearance order.
// The pick func returns the line's contribution and whether the line
// participates at all.
func (a *Aggregator) vendorAmounts(lines []domain.DerivedLine, pick func(*domain.DerivedLine) (float64, bool)) []domain.VendorAmountRow {
	index := make(map[string]int)
	rows := []domain.VendorAmountRow{}

	for i := range lines {
		l := &lines[i]
		v, ok := pick(l)
		if !ok {
			continue
		}
		idx, seen := index[l.VendorName]
		if !seen {
			idx = len(rows)
			index[l.VendorName] = idx
			rows = append(rows, domain.VendorAmountRow{VendorName: l.VendorName})
		}
		rows[idx].Amount += v
	}
	return rows
}

// periodAmounts folds one metric per period, ascending by period. Lines
// with a null period are excluded.
func (a *Aggregator) periodAmounts(lines []domain.DerivedLine, pick func(*domain.DerivedLine) (float64, bool)) []domain.PeriodAmountRow {
	index := make(map[string]int)
	rows := []domain.PeriodAmountRow{}

	for i := range lines {
		l := &lines[i]
		if l.Period == "" {
			continue
		}
		v, ok := pick(l)
		if !ok {
			continue
		}
		idx, seen := index[l.Period]
		if !seen {
			idx = len(rows)
			index[l.Period] = idx
			rows = append(rows, domain.PeriodAmountRow{Period: l.Period})
		}
		rows[idx].Amount += v
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows
}

func overbilledAmount(l *domain.DerivedLine) (float64, bool) {
	if !l.OverbillingAmount.Valid || l.OverbillingAmount.Value <= 0 {
		return 0, false
	}
	return l.OverbillingAmount.Value, true
}

func underbilledAmount(l *domain.DerivedLine) (float64, bool) {
	if !l.OverbillingAmount.Valid || l.OverbillingAmount.Value >= 0 {
		return 0, false
	}
	return -l.OverbillingAmount.Value, true
}

func headVendorSpend(rows []domain.VendorSpendRow, n int) []domain.VendorSpendRow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
