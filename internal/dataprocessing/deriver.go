package dataprocessing

import (
	"time"

	"p2pcli/pkg/contracts/domain"
)

// DelayReasonRaisedAfterDelivery annotates lines whose delay value is
// negative: either the PO was raised after the goods arrived, or the
// delivery date is missing entirely.
const DelayReasonRaisedAfterDelivery = "PO raised after delivery"

// delayUnknown is the sentinel delay for lines missing a usable date pair.
const delayUnknown = -1

// Derive computes the analytics fields for every normalized line. The
// processing instant is injected by the caller so the on-time check stays
// deterministic under test; the transform never reads ambient system time.
func Derive(lines []domain.PurchaseOrderLine, now time.Time) []domain.DerivedLine {
	out := make([]domain.DerivedLine, len(lines))
	for i := range lines {
		out[i] = deriveLine(lines[i], now)
	}
	return out
}

// deriveLine is pure and record-at-a-time: no cross-record dependency.
func deriveLine(line domain.PurchaseOrderLine, now time.Time) domain.DerivedLine {
	d := domain.DerivedLine{PurchaseOrderLine: line}

	d.DeliveryDelayDays = delayUnknown
	if line.DeliveryDate.Valid && line.DocumentDate.Valid {
		d.DeliveryDelayDays = daysBetween(line.DocumentDate.Time, line.DeliveryDate.Time)
	}

	// A line without both dates cannot be backdated.
	d.IsBackdated = line.DeliveryDate.Before(line.DocumentDate)

	if d.DeliveryDelayDays < 0 {
		d.DelayReason = DelayReasonRaisedAfterDelivery
	}

	if line.InvoicedValue.Valid && line.OrderedValue.Valid {
		d.OverbillingAmount = domain.NewAmount(line.InvoicedValue.Value - line.OrderedValue.Value)
	}

	fullyDelivered := line.StillToDeliver.Valid && line.StillToDeliver.Value == 0
	futureDelivery := line.DeliveryDate.Valid && !line.DeliveryDate.Time.Before(now)
	d.IsOnTime = futureDelivery || fullyDelivered

	return d
}

// daysBetween returns the whole-day difference to - from, negative when the
// second date precedes the first.
func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}
