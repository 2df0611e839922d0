// Package domain contains persistence models for the billing warehouse.
package domain

import (
	"gorm.io/datatypes"
)

// StatusPending is the one invoice status with sync semantics: a PENDING
// invoice is still mutable upstream and is re-fetched on every run. Any
// other status marks the invoice finalized and immutable.
const StatusPending = "PENDING"

// Invoice is one synchronized invoice row. Date columns hold canonical
// `YYYY-MM-DD HH:MM:SS` strings; monetary columns are integer cents as
// reported by the provider.
type Invoice struct {
	ID                   string         `gorm:"column:id;primaryKey;size:64"`
	OrgID                *string        `gorm:"column:org_id;size:64;index"`
	Created              *string        `gorm:"column:created;size:32"`
	StartDate            *string        `gorm:"column:start_date;size:32"`
	EndDate              *string        `gorm:"column:end_date;size:32;index"`
	Updated              *string        `gorm:"column:updated;size:32"`
	StartingBalanceCents *int64         `gorm:"column:starting_balance_cents"`
	AmountBilledCents    *int64         `gorm:"column:amount_billed_cents"`
	AmountPaidCents      *int64         `gorm:"column:amount_paid_cents"`
	CreditsCents         *int64         `gorm:"column:credits_cents"`
	SubtotalCents        *int64         `gorm:"column:subtotal_cents"`
	Refunds              datatypes.JSON `gorm:"column:refunds"`
	SalesTaxCents        *int64         `gorm:"column:sales_tax_cents"`
	StatusName           *string        `gorm:"column:status_name;size:32;index"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLineItem is one flattened charge entry. The id is warehouse-local,
// generated at insert time; the provider's identity for a line item is only
// the (invoice_id, position) it came from.
type InvoiceLineItem struct {
	ID               string   `gorm:"column:id;primaryKey;size:36"`
	GroupID          *string  `gorm:"column:group_id;size:64"`
	InvoiceID        *string  `gorm:"column:invoice_id;size:64;index"`
	ClusterName      *string  `gorm:"column:cluster_name"`
	GroupName        *string  `gorm:"column:group_name"`
	SKU              *string  `gorm:"column:sku"`
	Created          *string  `gorm:"column:created;size:32"`
	StartDate        *string  `gorm:"column:start_date;size:32"`
	EndDate          *string  `gorm:"column:end_date;size:32"`
	Quantity         *float64 `gorm:"column:quantity"`
	Unit             *string  `gorm:"column:unit"`
	UnitPriceDollars *float64 `gorm:"column:unit_price_dollars"`
	TotalPriceCents  *int64   `gorm:"column:total_price_cents"`
	StitchAppName    *string  `gorm:"column:stitch_app_name"`
	Note             *string  `gorm:"column:note"`
	Feature          *string  `gorm:"column:feature"`
	MetricDate       *string  `gorm:"column:metric_date;size:32"`
}

// TableName sets the database table name.
func (InvoiceLineItem) TableName() string { return "invoices_line_items" }
