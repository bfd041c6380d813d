package odoo

import "encoding/json"

// The server encodes null-ish values as false and many2one references as
// [id, display_name] pairs, so decoded rows need loose conversions.

// asString returns the string value, treating false/null as empty.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat returns the numeric value, treating false/null as zero.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

// asInt64 returns the integer value, treating false/null as zero.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}

// many2oneID extracts the id from an [id, name] pair; 0 when the reference
// is absent (false).
func many2oneID(v any) int64 {
	pair, ok := v.([]any)
	if !ok || len(pair) == 0 {
		return 0
	}
	return asInt64(pair[0])
}

// many2oneName extracts the display name from an [id, name] pair.
func many2oneName(v any) string {
	pair, ok := v.([]any)
	if !ok || len(pair) < 2 {
		return ""
	}
	return asString(pair[1])
}
