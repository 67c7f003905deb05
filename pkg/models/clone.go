package models

// CloneMap deep-copies a JSON-like map. Nested maps and slices are copied; scalars are shared.
func CloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = CloneValue(v)
	}

	return out
}

// CloneValue deep-copies a JSON-like value.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}

		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
