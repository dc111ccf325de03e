package domain

// PurchaseOrderLine is one normalized purchase-order line item from the
// uploaded procure-to-pay snapshot. String identity fields are kept verbatim
// from the export; date and numeric cells that failed coercion carry invalid
// Date/Amount values instead of being dropped.
type PurchaseOrderLine struct {
	VendorName          string `json:"vendor_name"`
	VendorNumber        string `json:"vendor_number"`
	EntityName          string `json:"entity_name"`
	Category            string `json:"category"` // IT / NON-IT flag
	MaterialDescription string `json:"material_description"`
	ServiceArea         string `json:"service_area"`
	PONumber            string `json:"po_number"`
	DocumentDate        Date   `json:"document_date"`
	DeliveryDate        Date   `json:"delivery_date"`
	OrderedQuantity     Amount `json:"ordered_quantity"`
	DeliveredQuantity   Amount `json:"delivered_quantity"`
	StillToDeliver      Amount `json:"still_to_deliver"`
	OrderedValue        Amount `json:"ordered_value"`
	InvoicedValue       Amount `json:"invoiced_value"`
	DownPayment         Amount `json:"down_payment"`
	GRDocument          string `json:"gr_document"` // goods-receipt reference, may be blank
	IRDocument          string `json:"ir_document"` // invoice-receipt reference, may be blank

	// Period is the "YYYY-MM" bucket of DocumentDate, or "" when the
	// document date is null. Lines with an empty period are excluded from
	// period-keyed aggregates.
	Period string `json:"period"`
}

// DerivedLine is a PurchaseOrderLine plus the per-record analytics fields.
// Every derived field is a pure function of the normalized fields and the
// single processing instant handed to the deriver; upstream fields are never
// mutated once derived.
type DerivedLine struct {
	PurchaseOrderLine

	// DeliveryDelayDays is DeliveryDate minus DocumentDate in days, or the
	// -1 sentinel when either date is missing. Backdated purchase orders
	// produce genuinely negative values.
	DeliveryDelayDays int `json:"delivery_delay_days"`

	// IsBackdated flags lines whose delivery date precedes the document
	// date: the PO was raised after the goods already arrived. A line with
	// a missing date is never backdated.
	IsBackdated bool `json:"is_backdated"`

	// OverbillingAmount is InvoicedValue minus OrderedValue. Positive means
	// overbilled, negative underbilled, zero an exact match. Invalid when
	// either side of the subtraction is null.
	OverbillingAmount Amount `json:"overbilling_amount"`

	// IsOnTime is true when the delivery date still lies in the future at
	// processing time, or when nothing remains to deliver.
	IsOnTime bool `json:"is_on_time"`

	// DelayReason is a human-readable note for negative delay values.
	DelayReason string `json:"delay_reason"`
}
