package resolver

import (
	"fmt"
	"reflect"
)

// Normalize returns a deep copy of value in the shape produced by
// encoding/json: map[string]any, []any and scalars. YAML-style
// map[any]any keys are stringified and every slice kind becomes []any.
func Normalize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return normalizeMap(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = Normalize(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = Normalize(v[i])
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = normalizeMap(v[i])
		}
		return out
	case string, bool, int, int64, float64:
		return v
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	}
	return value
}

// NormalizeMap is Normalize for a top-level mapping. A nil map yields an
// empty one.
func NormalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return normalizeMap(m)
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

// AsMap reports whether value is a plain mapping, returning it normalized.
func AsMap(value any) (map[string]any, bool) {
	switch value.(type) {
	case map[string]any, map[any]any:
		return Normalize(value).(map[string]any), true
	}
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return Normalize(value).(map[string]any), true
	}
	return nil, false
}

// AsSequence reports whether value is an ordered sequence. Strings are not
// sequences.
func AsSequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil, string:
		return nil, false
	case []any:
		return v, true
	}
	kind := reflect.ValueOf(value).Kind()
	if kind == reflect.Slice || kind == reflect.Array {
		return Normalize(value).([]any), true
	}
	return nil, false
}
