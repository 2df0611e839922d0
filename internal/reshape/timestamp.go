package reshape

import (
	"strings"
	"time"
)

// TimestampFormat is the canonical warehouse timestamp layout.
const TimestampFormat = "2006-01-02 15:04:05"

// timestampLayouts are the provider shapes accepted by NormalizeTimestamp,
// tried in order. The canonical layout is included so normalization is
// idempotent.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	TimestampFormat,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp converts a date-shaped value to the canonical
// `YYYY-MM-DD HH:MM:SS` string in UTC. Null, empty, and unparseable values
// normalize to nil, never to an error.
func NormalizeTimestamp(v any) *string {
	switch value := v.(type) {
	case nil:
		return nil
	case time.Time:
		formatted := value.UTC().Format(TimestampFormat)
		return &formatted
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil
		}
		for _, layout := range timestampLayouts {
			parsed, err := time.Parse(layout, trimmed)
			if err != nil {
				continue
			}
			formatted := parsed.UTC().Format(TimestampFormat)
			return &formatted
		}
		return nil
	default:
		return nil
	}
}
