package exporter

import (
	"p2pcli/internal/dataprocessing"
	"p2pcli/pkg/contracts/domain"
)

// Sheet is one exported table: a name, a header row and data rows. Cell
// values are either strings or float64s; the workbook writer keeps numbers
// numeric while the CSV writer renders everything as text.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Sheets flattens every pipeline table into its export representation, in
// presentation order. Dates are rendered with the given layout.
func Sheets(result *dataprocessing.PipelineResult, dateFormat string) []Sheet {
	date := func(d domain.Date) string { return d.Format(dateFormat) }

	spendHeaders := func(first ...string) []string {
		return append(first, "Total PO Ordered Value", "Total PO Invoice Value", "Total PO Down Payment")
	}

	vendorSpendSheet := func(name string, rows []domain.VendorSpendRow) Sheet {
		s := Sheet{
			Name:    name,
			Headers: spendHeaders("Vendor Name", "Vendor Number", "Entity Name", "IT/NON-IT"),
		}
		for _, r := range rows {
			s.Rows = append(s.Rows, []interface{}{
				r.VendorName, r.VendorNumber, r.EntityName, r.Category,
				r.OrderedValue, r.InvoicedValue, r.DownPayment,
			})
		}
		return s
	}

	materialSpendSheet := func(name string, rows []domain.MaterialSpendRow) Sheet {
		s := Sheet{
			Name:    name,
			Headers: spendHeaders("Material Description", "IT/NON-IT"),
		}
		for _, r := range rows {
			s.Rows = append(s.Rows, []interface{}{
				r.MaterialDescription, r.Category,
				r.OrderedValue, r.InvoicedValue, r.DownPayment,
			})
		}
		return s
	}

	monthlyVendorSheet := func(name string, rows []domain.MonthlyVendorSpendRow) Sheet {
		s := Sheet{
			Name:    name,
			Headers: spendHeaders("Month", "Vendor Name", "Vendor Number", "Entity Name", "IT/NON-IT"),
		}
		for _, r := range rows {
			s.Rows = append(s.Rows, []interface{}{
				r.Period, r.VendorName, r.VendorNumber, r.EntityName, r.Category,
				r.OrderedValue, r.InvoicedValue, r.DownPayment,
			})
		}
		return s
	}

	vendorAmountSheet := func(name, amountHeader string, rows []domain.VendorAmountRow) Sheet {
		s := Sheet{Name: name, Headers: []string{"Vendor Name", amountHeader}}
		for _, r := range rows {
			s.Rows = append(s.Rows, []interface{}{r.VendorName, r.Amount})
		}
		return s
	}

	periodAmountSheet := func(name, amountHeader string, rows []domain.PeriodAmountRow) Sheet {
		s := Sheet{Name: name, Headers: []string{"Month", amountHeader}}
		for _, r := range rows {
			s.Rows = append(s.Rows, []interface{}{r.Period, r.Amount})
		}
		return s
	}

	billingSheet := func(name, amountHeader string, rows []domain.BillingVarianceRow) Sheet {
		s := Sheet{
			Name: name,
			Headers: []string{
				"Purchasing Document Number", "Document Date", "Delivery Date",
				"Vendor Name", "Vendor Number", "Entity Name", "IT/NON-IT",
				"PO Ordered Value in Loc. Curr.", "PO Invoice Value in Loc. Curr.",
				amountHeader,
			},
		}
		for _, r := range rows {
			s.Rows = append(s.Rows, []interface{}{
				r.PONumber, date(r.DocumentDate), date(r.DeliveryDate),
				r.VendorName, r.VendorNumber, r.EntityName, r.Category,
				r.OrderedValue, r.InvoicedValue, r.Amount,
			})
		}
		return s
	}

	serviceAreaSheet := Sheet{
		Name:    dataprocessing.TableServiceAreaSpend,
		Headers: spendHeaders("Service Area", "IT/NON-IT"),
	}
	for _, r := range result.ServiceAreaSpend {
		serviceAreaSheet.Rows = append(serviceAreaSheet.Rows, []interface{}{
			r.ServiceArea, r.Category, r.OrderedValue, r.InvoicedValue, r.DownPayment,
		})
	}

	deliverySheet := Sheet{
		Name: dataprocessing.TableVendorDelivery,
		Headers: []string{
			"Vendor Name", "Vendor Number", "Entity Name", "IT/NON-IT",
			"Total Ordered Quantity", "Total Delivered Quantity", "Total Pending Quantity",
			"Total PO Ordered Value", "Total PO Invoice Value", "Total PO Down Payment",
			"Delivery Percentage (%)",
		},
	}
	for _, r := range result.VendorDelivery {
		deliverySheet.Rows = append(deliverySheet.Rows, []interface{}{
			r.VendorName, r.VendorNumber, r.EntityName, r.Category,
			r.OrderedQuantity, r.DeliveredQuantity, r.PendingQuantity,
			r.OrderedValue, r.InvoicedValue, r.DownPayment,
			r.DeliveryPercentage,
		})
	}

	delayedSheet := Sheet{
		Name: dataprocessing.TableDelayedPOs,
		Headers: []string{
			"Purchasing Document Number", "Document Date", "Delivery Date",
			"Delivery Delay", "Why PO Delay", "IT/NON-IT", "Vendor Number", "Entity Name",
		},
	}
	for _, r := range result.DelayedPOs {
		delayedSheet.Rows = append(delayedSheet.Rows, []interface{}{
			r.PONumber, date(r.DocumentDate), date(r.DeliveryDate),
			r.DelayDays, r.DelayReason, r.Category, r.VendorNumber, r.EntityName,
		})
	}

	quantitySheet := Sheet{
		Name: dataprocessing.TableQuantityErrors,
		Headers: []string{
			"Purchasing Document Number", "Vendor Name", "Vendor Number", "Entity Name",
			"IT/NON-IT", "Material Description",
			"Ordered Quantity", "Delivery Quantity", "Excess Quantity",
		},
	}
	for _, r := range result.QuantityErrors {
		quantitySheet.Rows = append(quantitySheet.Rows, []interface{}{
			r.PONumber, r.VendorName, r.VendorNumber, r.EntityName,
			r.Category, r.MaterialDescription,
			r.OrderedQuantity, r.DeliveredQuantity, r.ExcessQuantity,
		})
	}

	trendSheet := Sheet{
		Name:    dataprocessing.TableMonthlySpendTrend,
		Headers: []string{"Month", "Total PO Ordered Value", "Total PO Invoice Value"},
	}
	for _, r := range result.MonthlySpendTrend {
		trendSheet.Rows = append(trendSheet.Rows, []interface{}{r.Period, r.OrderedValue, r.InvoicedValue})
	}

	vendorTrendSheet := Sheet{
		Name:    dataprocessing.TableVendorSpendTrend,
		Headers: []string{"Vendor Name", "Total PO Ordered Value", "Total PO Invoice Value"},
	}
	for _, r := range result.VendorSpendTrend {
		vendorTrendSheet.Rows = append(vendorTrendSheet.Rows, []interface{}{r.VendorName, r.OrderedValue, r.InvoicedValue})
	}

	entitySheet := Sheet{
		Name:    dataprocessing.TableEntitySpend,
		Headers: []string{"Entity Name", "Total PO Ordered Value"},
	}
	for _, r := range result.EntitySpend {
		entitySheet.Rows = append(entitySheet.Rows, []interface{}{r.EntityName, r.OrderedValue})
	}

	return []Sheet{
		vendorSpendSheet(dataprocessing.TableVendorSpend, result.VendorSpend),
		materialSpendSheet(dataprocessing.TableMaterialSpend, result.MaterialSpend),
		serviceAreaSheet,
		vendorSpendSheet(dataprocessing.TableTopVendors, result.TopVendors),
		materialSpendSheet(dataprocessing.TableTopMaterials, result.TopMaterials),
		monthlyVendorSheet(dataprocessing.TableMonthlyTopVendors, result.MonthlyTopVendors),
		deliverySheet,
		delayedSheet,
		quantitySheet,
		billingSheet(dataprocessing.TableOverbilling, "Overbilling Amount", result.Overbilling),
		billingSheet(dataprocessing.TableUnderbilling, "Underbilling Amount", result.Underbilling),
		trendSheet,
		vendorTrendSheet,
		entitySheet,
		vendorAmountSheet(dataprocessing.TablePendingDeliveries, "Pending Deliveries", result.PendingDeliveries),
		vendorAmountSheet(dataprocessing.TableDownPayments, "PO Down Payment", result.DownPayments),
		vendorAmountSheet(dataprocessing.TableVendorOverbilling, "Overbilling Amount", result.VendorOverbilling),
		vendorAmountSheet(dataprocessing.TableVendorUnderbilling, "Underbilling Amount", result.VendorUnderbilling),
		periodAmountSheet(dataprocessing.TableMonthlyOverbilling, "Overbilling Amount", result.MonthlyOverbilling),
		periodAmountSheet(dataprocessing.TableMonthlyUnderbilling, "Underbilling Amount", result.MonthlyUnderbilling),
	}
}
