package reshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diagnosticFields(diags []Diagnostic, op string) []string {
	var fields []string
	for _, d := range diags {
		if d.Op == op {
			fields = append(fields, d.Field)
		}
	}
	return fields
}

func TestInvoicePlanRenamesAndNormalizes(t *testing.T) {
	row, diags := InvoicePlan.Apply(map[string]any{
		"id":                "inv-1",
		"orgId":             "org-1",
		"statusName":        "PENDING",
		"amountBilledCents": float64(500),
		"created":           "2024-01-01T00:00:00Z",
	})

	assert.Equal(t, "inv-1", row["id"])
	assert.Equal(t, "org-1", row["org_id"])
	assert.Equal(t, "PENDING", row["status_name"])
	assert.Equal(t, float64(500), row["amount_billed_cents"])
	assert.Equal(t, "2024-01-01 00:00:00", row["created"])

	// Columns the provider did not send are present as NULL, and each one
	// is reported.
	assert.Nil(t, row["refunds"])
	assert.Contains(t, diagnosticFields(diags, OpDefaultColumn), "refunds")

	require.Len(t, row, len(InvoicePlan.Columns))
}

func TestApplyDropsUnmappedFieldsWithDiagnostic(t *testing.T) {
	row, diags := InvoicePlan.Apply(map[string]any{
		"id":              "inv-1",
		"brandNewField":   "surprise",
		"anotherUnmapped": 7,
	})

	_, ok := row["brandNewField"]
	assert.False(t, ok)

	dropped := diagnosticFields(diags, OpDropField)
	assert.ElementsMatch(t, []string{"brandNewField", "anotherUnmapped"}, dropped)
	for _, d := range diags {
		assert.Equal(t, "invoices", d.Table)
	}
}

func TestApplyNullsUnparseableDates(t *testing.T) {
	row, _ := InvoicePlan.Apply(map[string]any{
		"id":      "inv-1",
		"created": "not a timestamp",
		"updated": nil,
	})
	assert.Nil(t, row["created"])
	assert.Nil(t, row["updated"])
}

func TestLineItemPlanExample(t *testing.T) {
	row, _ := LineItemPlan.Apply(map[string]any{
		"invoice_id": "inv-1",
		"startDate":  "2024-01-01T00:00:00Z",
		"quantity":   float64(3),
		"sku":        "CLUSTER",
		"metricDate": "2024-01-02T00:00:00Z",
	})

	assert.Equal(t, "2024-01-01 00:00:00", row["start_date"])
	assert.Equal(t, "2024-01-02 00:00:00", row["metric_date"])
	assert.Equal(t, float64(3), row["quantity"])
	assert.Equal(t, "inv-1", row["invoice_id"])
	assert.Len(t, row, len(LineItemPlan.Columns))
}

func TestApplyIsCompleteForEveryColumn(t *testing.T) {
	row, _ := LineItemPlan.Apply(map[string]any{})
	for _, column := range LineItemPlan.Columns {
		_, ok := row[column]
		assert.True(t, ok, "column %s missing", column)
	}
}
