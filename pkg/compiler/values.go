package compiler

// Helpers for walking the decoded JSON value tree (maps, slices,
// float64 numbers, strings, bools). All lookups are defaulted: a
// missing or mistyped field yields the supplied default, mirroring the
// warn-and-continue policy of the expander.

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
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

func getInt(m map[string]any, key string, def int) int {
	if v, ok := m[key]; ok {
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return def
}

func getInt64(m map[string]any, key string, def int64) int64 {
	if v, ok := m[key]; ok {
		if n, ok := toInt(v); ok {
			return int64(n)
		}
	}
	return def
}

func getFloat(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return def
}

func getString(m map[string]any, key, def string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func getBool(m map[string]any, key string, def bool) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func toIntSlice(v any) []int {
	arr, ok := asArray(v)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(arr))
	for _, item := range arr {
		if n, ok := toInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func getIntSlice(m map[string]any, key string, def []int) []int {
	v, ok := m[key]
	if !ok {
		return def
	}
	if out := toIntSlice(v); out != nil {
		return out
	}
	return def
}

// getPairs reads a [[a,b],...] array of two-element numeric pairs.
func getPairs(m map[string]any, key string) [][2]float64 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	arr, ok := asArray(v)
	if !ok {
		return nil
	}
	out := make([][2]float64, 0, len(arr))
	for _, item := range arr {
		pair, ok := asArray(item)
		if !ok || len(pair) < 2 {
			continue
		}
		a, okA := toFloat(pair[0])
		b, okB := toFloat(pair[1])
		if okA && okB {
			out = append(out, [2]float64{a, b})
		}
	}
	return out
}

// getByteSlice reads a [n,n,...] array as raw bytes.
func getByteSlice(m map[string]any, key string) []byte {
	v, ok := m[key]
	if !ok {
		return nil
	}
	arr, ok := asArray(v)
	if !ok {
		return nil
	}
	out := make([]byte, 0, len(arr))
	for _, item := range arr {
		if n, ok := toInt(item); ok {
			out = append(out, byte(n))
		}
	}
	return out
}
