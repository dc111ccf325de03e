package domain

// Aggregate and audit table rows produced by the analytics pipeline. Each
// table is derived fresh from one snapshot; rows are plain values the
// presentation layer consumes read-only.

// VendorSpendRow sums purchase-order values per vendor identity.
type VendorSpendRow struct {
	VendorName   string  `json:"vendor_name"`
	VendorNumber string  `json:"vendor_number"`
	EntityName   string  `json:"entity_name"`
	Category     string  `json:"category"`
	OrderedValue float64 `json:"ordered_value"`
	InvoicedValue float64 `json:"invoiced_value"`
	DownPayment  float64 `json:"down_payment"`
}

// MaterialSpendRow sums purchase-order values per material description.
type MaterialSpendRow struct {
	MaterialDescription string  `json:"material_description"`
	Category            string  `json:"category"`
	OrderedValue        float64 `json:"ordered_value"`
	InvoicedValue       float64 `json:"invoiced_value"`
	DownPayment         float64 `json:"down_payment"`
}

// ServiceAreaSpendRow sums purchase-order values per service area.
type ServiceAreaSpendRow struct {
	ServiceArea   string  `json:"service_area"`
	Category      string  `json:"category"`
	OrderedValue  float64 `json:"ordered_value"`
	InvoicedValue float64 `json:"invoiced_value"`
	DownPayment   float64 `json:"down_payment"`
}

// MonthlyVendorSpendRow sums purchase-order values per vendor and period.
type MonthlyVendorSpendRow struct {
	Period        string  `json:"period"`
	VendorName    string  `json:"vendor_name"`
	VendorNumber  string  `json:"vendor_number"`
	EntityName    string  `json:"entity_name"`
	Category      string  `json:"category"`
	OrderedValue  float64 `json:"ordered_value"`
	InvoicedValue float64 `json:"invoiced_value"`
	DownPayment   float64 `json:"down_payment"`
}

// VendorDeliveryRow is the vendor order summary with quantity totals and the
// delivered percentage of ordered quantity.
type VendorDeliveryRow struct {
	VendorName         string  `json:"vendor_name"`
	VendorNumber       string  `json:"vendor_number"`
	EntityName         string  `json:"entity_name"`
	Category           string  `json:"category"`
	OrderedQuantity    float64 `json:"ordered_quantity"`
	DeliveredQuantity  float64 `json:"delivered_quantity"`
	PendingQuantity    float64 `json:"pending_quantity"`
	OrderedValue       float64 `json:"ordered_value"`
	InvoicedValue      float64 `json:"invoiced_value"`
	DownPayment        float64 `json:"down_payment"`
	DeliveryPercentage float64 `json:"delivery_percentage"`
}

// PeriodTrendRow carries ordered and invoiced totals for one period.
type PeriodTrendRow struct {
	Period        string  `json:"period"`
	OrderedValue  float64 `json:"ordered_value"`
	InvoicedValue float64 `json:"invoiced_value"`
}

// VendorTrendRow carries ordered and invoiced totals for one vendor name.
type VendorTrendRow struct {
	VendorName    string  `json:"vendor_name"`
	OrderedValue  float64 `json:"ordered_value"`
	InvoicedValue float64 `json:"invoiced_value"`
}

// EntitySpendRow carries the ordered total for one entity.
type EntitySpendRow struct {
	EntityName   string  `json:"entity_name"`
	OrderedValue float64 `json:"ordered_value"`
}

// VendorAmountRow is a single summed amount keyed by vendor name, used for
// pending-delivery, down-payment and billing-variance rollups.
type VendorAmountRow struct {
	VendorName string  `json:"vendor_name"`
	Amount     float64 `json:"amount"`
}

// PeriodAmountRow is a single summed amount keyed by period.
type PeriodAmountRow struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

// DelayedPORow is the audit projection of an operationally incomplete line:
// one missing a goods-receipt or invoice-receipt reference.
type DelayedPORow struct {
	PONumber     string `json:"po_number"`
	DocumentDate Date   `json:"document_date"`
	DeliveryDate Date   `json:"delivery_date"`
	DelayDays    int    `json:"delay_days"`
	DelayReason  string `json:"delay_reason"`
	Category     string `json:"category"`
	VendorNumber string `json:"vendor_number"`
	EntityName   string `json:"entity_name"`
}

// QuantityErrorRow is the audit projection of an over-delivered line.
type QuantityErrorRow struct {
	PONumber          string  `json:"po_number"`
	VendorName        string  `json:"vendor_name"`
	VendorNumber      string  `json:"vendor_number"`
	EntityName        string  `json:"entity_name"`
	Category          string  `json:"category"`
	MaterialDescription string `json:"material_description"`
	OrderedQuantity   float64 `json:"ordered_quantity"`
	DeliveredQuantity float64 `json:"delivered_quantity"`
	ExcessQuantity    float64 `json:"excess_quantity"`
}

// BillingVarianceRow is the audit projection of an over- or under-billed
// line. Amount is always reported positive; the table the row belongs to
// determines the sign of the variance.
type BillingVarianceRow struct {
	PONumber      string  `json:"po_number"`
	DocumentDate  Date    `json:"document_date"`
	DeliveryDate  Date    `json:"delivery_date"`
	VendorName    string  `json:"vendor_name"`
	VendorNumber  string  `json:"vendor_number"`
	EntityName    string  `json:"entity_name"`
	Category      string  `json:"category"`
	OrderedValue  float64 `json:"ordered_value"`
	InvoicedValue float64 `json:"invoiced_value"`
	Amount        float64 `json:"amount"`
}
