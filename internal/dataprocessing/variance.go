package dataprocessing

import (
	"sort"

	"p2pcli/pkg/contracts/domain"
)

// The variance extractors are row-level filters with fixed projections.
// They never aggregate; every output row traces to exactly one input line,
// and re-running them on the same derived set yields identical output.

// DelayedPOs returns lines missing a goods-receipt or an invoice-receipt
// reference: operationally incomplete regardless of any date delay.
func DelayedPOs(lines []domain.DerivedLine) []domain.DelayedPORow {
	rows := []domain.DelayedPORow{}
	for i := range lines {
		l := &lines[i]
		if l.GRDocument != "" && l.IRDocument != "" {
			continue
		}
		rows = append(rows, domain.DelayedPORow{
			PONumber:     l.PONumber,
			DocumentDate: l.DocumentDate,
			DeliveryDate: l.DeliveryDate,
			DelayDays:    l.DeliveryDelayDays,
			DelayReason:  l.DelayReason,
			Category:     l.Category,
			VendorNumber: l.VendorNumber,
			EntityName:   l.EntityName,
		})
	}
	return rows
}

// QuantityErrors returns lines where the delivered quantity exceeds the
// ordered quantity. Lines with a null quantity on either side cannot assert
// an over-delivery and are skipped.
func QuantityErrors(lines []domain.DerivedLine) []domain.QuantityErrorRow {
	rows := []domain.QuantityErrorRow{}
	for i := range lines {
		l := &lines[i]
		if !l.DeliveredQuantity.Valid || !l.OrderedQuantity.Valid {
			continue
		}
		if l.DeliveredQuantity.Value <= l.OrderedQuantity.Value {
			continue
		}
		rows = append(rows, domain.QuantityErrorRow{
			PONumber:            l.PONumber,
			VendorName:          l.VendorName,
			VendorNumber:        l.VendorNumber,
			EntityName:          l.EntityName,
			Category:            l.Category,
			MaterialDescription: l.MaterialDescription,
			OrderedQuantity:     l.OrderedQuantity.Value,
			DeliveredQuantity:   l.DeliveredQuantity.Value,
			ExcessQuantity:      l.DeliveredQuantity.Value - l.OrderedQuantity.Value,
		})
	}
	return rows
}

// OverbillingCases returns lines invoiced above their ordered value, largest
// variance first.
func OverbillingCases(lines []domain.DerivedLine) []domain.BillingVarianceRow {
	return billingCases(lines, overbilledAmount)
}

// UnderbillingCases returns lines invoiced below their ordered value, with
// the variance reported as a positive amount, largest first.
func UnderbillingCases(lines []domain.DerivedLine) []domain.BillingVarianceRow {
	return billingCases(lines, underbilledAmount)
}

func billingCases(lines []domain.DerivedLine, pick func(*domain.DerivedLine) (float64, bool)) []domain.BillingVarianceRow {
	rows := []domain.BillingVarianceRow{}
	for i := range lines {
		l := &lines[i]
		amount, ok := pick(l)
		if !ok {
			continue
		}
		rows = append(rows, domain.BillingVarianceRow{
			PONumber:      l.PONumber,
			DocumentDate:  l.DocumentDate,
			DeliveryDate:  l.DeliveryDate,
			VendorName:    l.VendorName,
			VendorNumber:  l.VendorNumber,
			EntityName:    l.EntityName,
			Category:      l.Category,
			OrderedValue:  l.OrderedValue.OrZero(),
			InvoicedValue: l.InvoicedValue.OrZero(),
			Amount:        amount,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })
	return rows
}
