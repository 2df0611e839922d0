package atlas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineItemsMissingOrNull(t *testing.T) {
	assert.Nil(t, Record{}.LineItems())
	assert.Nil(t, Record{"lineItems": nil}.LineItems())
	assert.Nil(t, Record{"lineItems": "not a list"}.LineItems())
}

func TestLineItemsSkipsNonObjectEntries(t *testing.T) {
	rec := Record{"lineItems": []any{
		map[string]any{"sku": "CLUSTER"},
		"garbage",
		map[string]any{"sku": "BACKUP"},
	}}
	items := rec.LineItems()
	assert.Len(t, items, 2)
	assert.Equal(t, "BACKUP", items[1]["sku"])
}

func TestAccessorsTolerateNonStringValues(t *testing.T) {
	rec := Record{"id": 42, "statusName": nil}
	assert.Equal(t, "", rec.ID())
	assert.Equal(t, "", rec.StatusName())
}
