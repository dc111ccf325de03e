package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p2pcli/pkg/contracts/domain"
)

// spendLine builds a derived line with just enough identity for grouping.
func spendLine(vendor, period string, ordered, invoiced float64) domain.DerivedLine {
	return domain.DerivedLine{
		PurchaseOrderLine: domain.PurchaseOrderLine{
			VendorName:    vendor,
			VendorNumber:  "V-" + vendor,
			EntityName:    "Entity One",
			Category:      "IT",
			Period:        period,
			OrderedValue:  domain.NewAmount(ordered),
			InvoicedValue: domain.NewAmount(invoiced),
		},
	}
}

func TestVendorSpend_GroupsInFirstAppearanceOrder(t *testing.T) {
	lines := []domain.DerivedLine{
		spendLine("Vendor B", "2024-01", 100, 90),
		spendLine("Vendor A", "2024-01", 200, 210),
		spendLine("Vendor B", "2024-02", 50, 60),
	}

	rows := NewAggregator(nil, DefaultAggregatorConfig()).VendorSpend(lines)

	require.Len(t, rows, 2)
	assert.Equal(t, "Vendor B", rows[0].VendorName)
	assert.Equal(t, float64(150), rows[0].OrderedValue)
	assert.Equal(t, float64(150), rows[0].InvoicedValue)
	assert.Equal(t, "Vendor A", rows[1].VendorName)
	assert.Equal(t, float64(200), rows[1].OrderedValue)
}

func TestVendorSpend_ConservesTotals(t *testing.T) {
	lines := []domain.DerivedLine{
		spendLine("Vendor A", "2024-01", 100.10, 90),
		spendLine("Vendor B", "2024-01", 200.20, 210),
		spendLine("Vendor A", "2024-02", 300.30, 310),
		spendLine("Vendor C", "2024-03", 0, 5),
	}
	// Null values contribute nothing but the line still groups.
	lines = append(lines, domain.DerivedLine{
		PurchaseOrderLine: domain.PurchaseOrderLine{
			VendorName:   "Vendor C",
			VendorNumber: "V-Vendor C",
			EntityName:   "Entity One",
			Category:     "IT",
		},
	})

	var wantOrdered, wantInvoiced float64
	for _, l := range lines {
		wantOrdered += l.OrderedValue.OrZero()
		wantInvoiced += l.InvoicedValue.OrZero()
	}

	rows := NewAggregator(nil, DefaultAggregatorConfig()).VendorSpend(lines)

	var gotOrdered, gotInvoiced float64
	for _, r := range rows {
		gotOrdered += r.OrderedValue
		gotInvoiced += r.InvoicedValue
	}
	assert.InDelta(t, wantOrdered, gotOrdered, 1e-9)
	assert.InDelta(t, wantInvoiced, gotInvoiced, 1e-9)
}

func TestVendorSpend_SplitsDistinctIdentityTuples(t *testing.T) {
	a := spendLine("Vendor A", "2024-01", 100, 100)
	b := spendLine("Vendor A", "2024-01", 100, 100)
	b.EntityName = "Entity Two"

	rows := NewAggregator(nil, DefaultAggregatorConfig()).VendorSpend([]domain.DerivedLine{a, b})

	require.Len(t, rows, 2)
	assert.Equal(t, "Entity One", rows[0].EntityName)
	assert.Equal(t, "Entity Two", rows[1].EntityName)
}

func TestVendorDeliverySummary_Percentage(t *testing.T) {
	mk := func(vendor string, ordered, delivered domain.Amount) domain.DerivedLine {
		return domain.DerivedLine{
			PurchaseOrderLine: domain.PurchaseOrderLine{
				VendorName:        vendor,
				OrderedQuantity:   ordered,
				DeliveredQuantity: delivered,
			},
		}
	}

	lines := []domain.DerivedLine{
		mk("Vendor A", domain.NewAmount(3), domain.NewAmount(1)),
		mk("Vendor B", domain.NewAmount(0), domain.NewAmount(0)),
		mk("Vendor C", domain.NewAmount(10), domain.NewAmount(10)),
	}

	rows := NewAggregator(nil, DefaultAggregatorConfig()).VendorDeliverySummary(lines)

	require.Len(t, rows, 3)
	// 1/3 rounds to 33.33, zero ordered stays at 0 instead of dividing.
	assert.Equal(t, 33.33, rows[0].DeliveryPercentage)
	assert.Equal(t, float64(0), rows[1].DeliveryPercentage)
	assert.Equal(t, float64(100), rows[2].DeliveryPercentage)
}

func TestTopVendors(t *testing.T) {
	agg := NewAggregator(nil, AggregatorConfig{TopN: 2})

	rows := []domain.VendorSpendRow{
		{VendorName: "Vendor A", OrderedValue: 100},
		{VendorName: "Vendor B", OrderedValue: 300},
		{VendorName: "Vendor C", OrderedValue: 100},
		{VendorName: "Vendor D", OrderedValue: 200},
	}

	top := agg.TopVendors(rows)

	require.Len(t, top, 2)
	assert.Equal(t, "Vendor B", top[0].VendorName)
	assert.Equal(t, "Vendor D", top[1].VendorName)

	// The source table keeps its own order.
	assert.Equal(t, "Vendor A", rows[0].VendorName)
}

func TestTopVendors_TiesKeepFirstAppearanceOrder(t *testing.T) {
	agg := NewAggregator(nil, AggregatorConfig{TopN: 3})

	top := agg.TopVendors([]domain.VendorSpendRow{
		{VendorName: "Vendor A", OrderedValue: 100},
		{VendorName: "Vendor B", OrderedValue: 100},
		{VendorName: "Vendor C", OrderedValue: 100},
		{VendorName: "Vendor D", OrderedValue: 100},
	})

	require.Len(t, top, 3)
	assert.Equal(t, "Vendor A", top[0].VendorName)
	assert.Equal(t, "Vendor B", top[1].VendorName)
	assert.Equal(t, "Vendor C", top[2].VendorName)
}

func TestTopVendors_FewerThanNReturnsAll(t *testing.T) {
	agg := NewAggregator(nil, AggregatorConfig{TopN: 10})

	top := agg.TopVendors([]domain.VendorSpendRow{
		{VendorName: "Vendor A", OrderedValue: 1},
	})

	assert.Len(t, top, 1)
}

func TestMonthlyVendorSpend_SortsAndSkipsNullPeriods(t *testing.T) {
	lines := []domain.DerivedLine{
		spendLine("Vendor A", "2024-02", 100, 0),
		spendLine("Vendor B", "2024-01", 50, 0),
		spendLine("Vendor C", "", 999, 0),
		spendLine("Vendor A", "2024-01", 200, 0),
	}

	rows := NewAggregator(nil, DefaultAggregatorConfig()).MonthlyVendorSpend(lines)

	require.Len(t, rows, 3)
	assert.Equal(t, "2024-01", rows[0].Period)
	assert.Equal(t, "Vendor A", rows[0].VendorName)
	assert.Equal(t, "2024-01", rows[1].Period)
	assert.Equal(t, "Vendor B", rows[1].VendorName)
	assert.Equal(t, "2024-02", rows[2].Period)
}

func TestMonthlyTopVendors_TruncatesPerPeriod(t *testing.T) {
	agg := NewAggregator(nil, AggregatorConfig{TopN: 1})

	monthly := agg.MonthlyVendorSpend([]domain.DerivedLine{
		spendLine("Vendor A", "2024-01", 100, 0),
		spendLine("Vendor B", "2024-01", 300, 0),
		spendLine("Vendor A", "2024-02", 50, 0),
	})

	top := agg.MonthlyTopVendors(monthly)

	require.Len(t, top, 2)
	assert.Equal(t, "Vendor B", top[0].VendorName)
	assert.Equal(t, "2024-01", top[0].Period)
	assert.Equal(t, "Vendor A", top[1].VendorName)
	assert.Equal(t, "2024-02", top[1].Period)
}

func TestMonthlySpendTrend(t *testing.T) {
	lines := []domain.DerivedLine{
		spendLine("Vendor A", "2024-03", 300, 310),
		spendLine("Vendor B", "2024-01", 100, 90),
		spendLine("Vendor C", "", 999, 999),
		spendLine("Vendor D", "2024-01", 50, 60),
	}

	rows := NewAggregator(nil, DefaultAggregatorConfig()).MonthlySpendTrend(lines)

	require.Len(t, rows, 2)
	assert.Equal(t, domain.PeriodTrendRow{Period: "2024-01", OrderedValue: 150, InvoicedValue: 150}, rows[0])
	assert.Equal(t, domain.PeriodTrendRow{Period: "2024-03", OrderedValue: 300, InvoicedValue: 310}, rows[1])
}

func TestVendorBillingRollups(t *testing.T) {
	mk := func(vendor, period string, variance domain.Amount) domain.DerivedLine {
		l := spendLine(vendor, period, 0, 0)
		l.OverbillingAmount = variance
		return l
	}

	lines := []domain.DerivedLine{
		mk("Vendor A", "2024-01", domain.NewAmount(200)),
		mk("Vendor A", "2024-02", domain.NewAmount(100)),
		mk("Vendor B", "2024-01", domain.NewAmount(-50)),
		mk("Vendor C", "2024-01", domain.NewAmount(0)),
		mk("Vendor D", "2024-01", domain.Amount{}),
	}

	agg := NewAggregator(nil, DefaultAggregatorConfig())

	over := agg.VendorOverbilling(lines)
	require.Len(t, over, 1)
	assert.Equal(t, domain.VendorAmountRow{VendorName: "Vendor A", Amount: 300}, over[0])

	under := agg.VendorUnderbilling(lines)
	require.Len(t, under, 1)
	assert.Equal(t, domain.VendorAmountRow{VendorName: "Vendor B", Amount: 50}, under[0])

	monthlyOver := agg.MonthlyOverbilling(lines)
	require.Len(t, monthlyOver, 2)
	assert.Equal(t, domain.PeriodAmountRow{Period: "2024-01", Amount: 200}, monthlyOver[0])
	assert.Equal(t, domain.PeriodAmountRow{Period: "2024-02", Amount: 100}, monthlyOver[1])

	monthlyUnder := agg.MonthlyUnderbilling(lines)
	require.Len(t, monthlyUnder, 1)
	assert.Equal(t, domain.PeriodAmountRow{Period: "2024-01", Amount: 50}, monthlyUnder[0])
}

func TestPendingDeliveriesByVendor(t *testing.T) {
	mk := func(vendor string, ordered, delivered float64) domain.DerivedLine {
		return domain.DerivedLine{
			PurchaseOrderLine: domain.PurchaseOrderLine{
				VendorName:        vendor,
				OrderedQuantity:   domain.NewAmount(ordered),
				DeliveredQuantity: domain.NewAmount(delivered),
			},
		}
	}

	rows := NewAggregator(nil, DefaultAggregatorConfig()).PendingDeliveriesByVendor([]domain.DerivedLine{
		mk("Vendor A", 10, 4),
		mk("Vendor A", 5, 5),
		mk("Vendor B", 3, 0),
	})

	require.Len(t, rows, 2)
	assert.Equal(t, domain.VendorAmountRow{VendorName: "Vendor A", Amount: 6}, rows[0])
	assert.Equal(t, domain.VendorAmountRow{VendorName: "Vendor B", Amount: 3}, rows[1])
}

func TestEntitySpend(t *testing.T) {
	a := spendLine("Vendor A", "2024-01", 100, 0)
	b := spendLine("Vendor B", "2024-01", 200, 0)
	b.EntityName = "Entity Two"
	c := spendLine("Vendor C", "2024-01", 50, 0)

	rows := NewAggregator(nil, DefaultAggregatorConfig()).EntitySpend([]domain.DerivedLine{a, b, c})

	require.Len(t, rows, 2)
	assert.Equal(t, domain.EntitySpendRow{EntityName: "Entity One", OrderedValue: 150}, rows[0])
	assert.Equal(t, domain.EntitySpendRow{EntityName: "Entity Two", OrderedValue: 200}, rows[1])
}
