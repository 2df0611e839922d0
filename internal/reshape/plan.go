// Package reshape flattens raw provider records into warehouse rows: it
// renames provider fields to destination columns, normalizes date-shaped
// values, defaults absent columns to NULL, and drops everything the
// destination schema has no home for.
package reshape

// Row is one destination table row keyed by column name. Absent or
// unparseable values are nil, which the warehouse stores as NULL.
type Row map[string]any

// Diagnostic is one reconciliation decision the reshape step took. Callers
// log and count these instead of the run failing on a shape mismatch.
type Diagnostic struct {
	Op    string
	Table string
	Field string
}

const (
	// OpDropField records a provider field with no destination column.
	OpDropField = "drop_field"
	// OpDefaultColumn records a destination column the provider did not send.
	OpDefaultColumn = "default_column"
)

// Plan describes how one destination table receives provider records.
type Plan struct {
	Table string
	// Rename maps provider field names to destination column names.
	// Identity entries mark fields that keep their name; anything absent
	// from the map is dropped.
	Rename map[string]string
	// Columns is the full destination column list, in warehouse order.
	Columns []string
	// DateColumns are the destination columns holding date-shaped values.
	DateColumns []string
}

// Apply reconciles one raw record against the plan's destination schema.
func (p Plan) Apply(rec map[string]any) (Row, []Diagnostic) {
	row := make(Row, len(p.Columns))
	var diags []Diagnostic

	for field, value := range rec {
		column, ok := p.Rename[field]
		if !ok {
			diags = append(diags, Diagnostic{Op: OpDropField, Table: p.Table, Field: field})
			continue
		}
		row[column] = value
	}

	for _, column := range p.DateColumns {
		if raw, ok := row[column]; ok {
			if normalized := NormalizeTimestamp(raw); normalized != nil {
				row[column] = *normalized
			} else {
				row[column] = nil
			}
		}
	}

	for _, column := range p.Columns {
		if _, ok := row[column]; !ok {
			row[column] = nil
			diags = append(diags, Diagnostic{Op: OpDefaultColumn, Table: p.Table, Field: column})
		}
	}

	return row, diags
}

// InvoicePlan reconciles invoice detail records against the invoices table.
// Nested collections (lineItems, payments, linkedInvoices, links) are
// stripped by the invoice pipeline before Apply; they belong to other
// pipelines, not this table.
var InvoicePlan = Plan{
	Table: "invoices",
	Rename: map[string]string{
		"id":                   "id",
		"orgId":                "org_id",
		"created":              "created",
		"startDate":            "start_date",
		"endDate":              "end_date",
		"updated":              "updated",
		"startingBalanceCents": "starting_balance_cents",
		"amountBilledCents":    "amount_billed_cents",
		"amountPaidCents":      "amount_paid_cents",
		"creditsCents":         "credits_cents",
		"subtotalCents":        "subtotal_cents",
		"refunds":              "refunds",
		"salesTaxCents":        "sales_tax_cents",
		"statusName":           "status_name",
	},
	Columns: []string{
		"id", "org_id", "created", "start_date", "end_date", "updated",
		"starting_balance_cents", "amount_billed_cents", "amount_paid_cents",
		"credits_cents", "subtotal_cents", "refunds", "sales_tax_cents",
		"status_name",
	},
	DateColumns: []string{"created", "start_date", "end_date", "updated"},
}

// LineItemPlan reconciles flattened line item records against the
// invoices_line_items table. The generated id column is assigned at insert
// time by the warehouse, so it is not part of the plan.
var LineItemPlan = Plan{
	Table: "invoices_line_items",
	Rename: map[string]string{
		"groupId":          "group_id",
		"invoice_id":       "invoice_id",
		"clusterName":      "cluster_name",
		"groupName":        "group_name",
		"sku":              "sku",
		"created":          "created",
		"startDate":        "start_date",
		"endDate":          "end_date",
		"quantity":         "quantity",
		"unit":             "unit",
		"unitPriceDollars": "unit_price_dollars",
		"totalPriceCents":  "total_price_cents",
		"stitchAppName":    "stitch_app_name",
		"note":             "note",
		"feature":          "feature",
		"metricDate":       "metric_date",
	},
	Columns: []string{
		"group_id", "invoice_id", "cluster_name", "group_name", "sku",
		"created", "start_date", "end_date", "quantity", "unit",
		"unit_price_dollars", "total_price_cents", "stitch_app_name",
		"note", "feature", "metric_date",
	},
	DateColumns: []string{"created", "start_date", "end_date", "metric_date"},
}
