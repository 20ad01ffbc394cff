package resolver

// Merge deep-merges override onto base and returns a new mapping.
//
// Nested mappings are merged key by key. Everything else in override
// (scalars, sequences, nil) replaces the value in base wholesale; sequences
// are never merged element-wise. Keys missing from override keep the base
// value. Neither argument is modified and the result shares no mutable
// state with them.
func Merge(base, override map[string]any) map[string]any {
	out := NormalizeMap(base)
	for k, v := range override {
		src, ok := AsMap(v)
		if !ok {
			out[k] = Normalize(v)
			continue
		}
		dst, ok := out[k].(map[string]any)
		if !ok {
			// base has no key k, or a non-mapping value with nothing to merge into
			out[k] = src
			continue
		}
		out[k] = Merge(dst, src)
	}
	return out
}
