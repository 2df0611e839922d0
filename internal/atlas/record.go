package atlas

// Record is one raw JSON object from the billing API. The provider adds and
// removes fields between API versions, so records stay schemaless until the
// reshape step reconciles them against the warehouse columns.
type Record map[string]any

// ID returns the record's opaque identifier, or "" when absent.
func (r Record) ID() string {
	return r.stringField("id")
}

// StatusName returns the invoice status enumeration value, or "" when absent.
func (r Record) StatusName() string {
	return r.stringField("statusName")
}

// LineItems returns the nested charge entries of an invoice detail record.
// A missing, null, or non-list lineItems field yields nil.
func (r Record) LineItems() []Record {
	raw, ok := r["lineItems"].([]any)
	if !ok {
		return nil
	}
	items := make([]Record, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, Record(m))
		}
	}
	return items
}

func (r Record) stringField(key string) string {
	v, ok := r[key].(string)
	if !ok {
		return ""
	}
	return v
}
