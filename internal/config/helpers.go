package config

import "math"

// JSON numbers arrive as float64 and YAML integers as int; both are
// accepted wherever an integer is expected.

func asString(v any) (string, bool) {
	x, ok := v.(string)
	return x, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func asBool(v any) (bool, bool) {
	x, ok := v.(bool)
	return x, ok
}

func asInts(v any) ([]int, bool) {
	switch xs := v.(type) {
	case []int:
		return append([]int(nil), xs...), true
	case []any:
		out := make([]int, 0, len(xs))
		for _, item := range xs {
			n, ok := asInt(item)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	default:
		return nil, false
	}
}

func asMap(v any) (map[string]any, bool) {
	x, ok := v.(map[string]any)
	return x, ok
}
