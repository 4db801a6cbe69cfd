package asl

import (
	"encoding/json"
	"time"
)

// Working documents keep numbers as json.Number so that integer inputs
// round-trip through filters and intrinsics without a float64 detour.

func ToFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func ToInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		i := int64(n)
		if float64(i) == n {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func IsNumericValue(v interface{}) bool {
	_, ok := ToFloat(v)
	return ok
}

// ToTimestamp parses an ISO-8601 timestamp value.
func ToTimestamp(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
