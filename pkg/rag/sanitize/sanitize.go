// Package sanitize normalizes document metadata before it is attached
// to vector store payloads. Vector backends only accept JSON-safe
// values, so anything exotic is converted here instead of at the
// call sites.
package sanitize

import (
	"fmt"
	"time"
)

// Metadata sanitizes a metadata map for storage in a vector payload.
// The input map is never modified. Unknown value types are stringified
// rather than dropped so no information is silently lost.
func Metadata(meta map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = Value(v)
	}
	return out
}

// Value sanitizes a single metadata value.
func Value(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool:
		return val
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC().Format(time.RFC3339)
	case map[string]interface{}:
		return Metadata(val)
	case []interface{}:
		items := make([]interface{}, len(val))
		for i, item := range val {
			items[i] = Value(item)
		}
		return items
	case []string:
		items := make([]interface{}, len(val))
		for i, item := range val {
			items[i] = item
		}
		return items
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
