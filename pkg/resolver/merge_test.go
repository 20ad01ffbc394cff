package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		override map[string]any
		want     map[string]any
	}{
		{
			name:     "nil override keeps base",
			base:     map[string]any{"title": "A"},
			override: nil,
			want:     map[string]any{"title": "A"},
		},
		{
			name:     "scalar override wins",
			base:     map[string]any{"title": "A", "count": 2},
			override: map[string]any{"title": "X"},
			want:     map[string]any{"title": "X", "count": 2},
		},
		{
			name:     "nested partial override",
			base:     map[string]any{"header": map[string]any{"title": "A", "description": "B"}},
			override: map[string]any{"header": map[string]any{"title": "X"}},
			want:     map[string]any{"header": map[string]any{"title": "X", "description": "B"}},
		},
		{
			name:     "mapping for a key missing in base is assigned",
			base:     map[string]any{"title": "A"},
			override: map[string]any{"cta": map[string]any{"label": "Shop"}},
			want:     map[string]any{"title": "A", "cta": map[string]any{"label": "Shop"}},
		},
		{
			name:     "mapping replaces a scalar",
			base:     map[string]any{"image": "hero.png"},
			override: map[string]any{"image": map[string]any{"src": "a.png"}},
			want:     map[string]any{"image": map[string]any{"src": "a.png"}},
		},
		{
			name:     "sequence replaces sequence",
			base:     map[string]any{"values": []any{"A", "B"}},
			override: map[string]any{"values": []any{"C"}},
			want:     map[string]any{"values": []any{"C"}},
		},
		{
			name:     "scalar replaces mapping",
			base:     map[string]any{"header": map[string]any{"title": "A"}},
			override: map[string]any{"header": "plain"},
			want:     map[string]any{"header": "plain"},
		},
		{
			name:     "explicit nil replaces",
			base:     map[string]any{"subtitle": "A"},
			override: map[string]any{"subtitle": nil},
			want:     map[string]any{"subtitle": nil},
		},
		{
			name:     "yaml style keys are normalized",
			base:     map[string]any{"page": map[string]any{"title": "A", "description": "B"}},
			override: map[string]any{"page": map[any]any{"title": "X"}},
			want:     map[string]any{"page": map[string]any{"title": "X", "description": "B"}},
		},
		{
			name:     "typed slices become sequences",
			base:     map[string]any{"tags": []any{"a"}},
			override: map[string]any{"tags": []string{"b", "c"}},
			want:     map[string]any{"tags": []any{"b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.base, tt.override)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	base := map[string]any{
		"page":  map[string]any{"title": "A"},
		"items": []any{map[string]any{"name": "one"}},
	}
	override := map[string]any{"cta": map[string]any{"label": "Go"}}

	got := Merge(base, override)
	got["page"].(map[string]any)["title"] = "mutated"
	got["items"].([]any)[0].(map[string]any)["name"] = "mutated"
	got["cta"].(map[string]any)["label"] = "mutated"

	assert.Equal(t, "A", base["page"].(map[string]any)["title"])
	assert.Equal(t, "one", base["items"].([]any)[0].(map[string]any)["name"])
	assert.Equal(t, "Go", override["cta"].(map[string]any)["label"])
}

func TestNormalize(t *testing.T) {
	in := map[any]any{
		"list":   []map[string]any{{"a": 1}},
		"nested": map[string]string{"k": "v"},
		1:        "numeric key",
	}
	want := map[string]any{
		"list":   []any{map[string]any{"a": 1}},
		"nested": map[string]any{"k": "v"},
		"1":      "numeric key",
	}
	if diff := cmp.Diff(want, Normalize(in)); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestAsSequence(t *testing.T) {
	_, ok := AsSequence("abc")
	assert.False(t, ok, "strings are not sequences")

	_, ok = AsSequence(nil)
	assert.False(t, ok)

	seq, ok := AsSequence([]string{"a"})
	assert.True(t, ok)
	assert.Equal(t, []any{"a"}, seq)
}

// scalarGen draws JSON-like leaf values.
func scalarGen() *rapid.Generator[any] {
	return rapid.OneOf(
		rapid.Map(rapid.StringN(0, 8, -1), func(s string) any { return s }),
		rapid.Map(rapid.IntRange(-100, 100), func(i int) any { return i }),
		rapid.Map(rapid.Bool(), func(b bool) any { return b }),
	)
}

func valueGen(depth int) *rapid.Generator[any] {
	if depth <= 0 {
		return scalarGen()
	}
	return rapid.OneOf(
		scalarGen(),
		rapid.Map(rapid.SliceOfN(scalarGen(), 0, 3), func(s []any) any { return s }),
		rapid.Map(mapGen(depth-1), func(m map[string]any) any { return m }),
	)
}

func mapGen(depth int) *rapid.Generator[map[string]any] {
	keys := rapid.SampledFrom([]string{"title", "description", "page", "categories", "image", "cta"})
	return rapid.MapOfN(keys, valueGen(depth), 0, 4)
}

func TestMerge_PropertyBased_OverrideLeavesWin(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := mapGen(2).Draw(t, "base")
		override := mapGen(2).Draw(t, "override")

		got := Merge(base, override)

		for k, v := range override {
			if _, isMap := v.(map[string]any); isMap {
				continue
			}
			if diff := cmp.Diff(Normalize(v), got[k], cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("key %q: override value lost (-want +got):\n%s", k, diff)
			}
		}
		for k, v := range base {
			if _, present := override[k]; present {
				continue
			}
			if diff := cmp.Diff(Normalize(v), got[k], cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("key %q: base value changed (-want +got):\n%s", k, diff)
			}
		}
	})
}

func TestMerge_PropertyBased_InputsUnchanged(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := mapGen(2).Draw(t, "base")
		override := mapGen(2).Draw(t, "override")
		baseBefore := Normalize(base)
		overrideBefore := Normalize(override)

		_ = Merge(base, override)

		if diff := cmp.Diff(baseBefore, Normalize(base)); diff != "" {
			t.Fatalf("base mutated:\n%s", diff)
		}
		if diff := cmp.Diff(overrideBefore, Normalize(override)); diff != "" {
			t.Fatalf("override mutated:\n%s", diff)
		}
	})
}

func TestMerge_PropertyBased_SequencesAreAtomic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		baseSeq := rapid.SliceOfN(scalarGen(), 0, 5).Draw(t, "baseSeq")
		overSeq := rapid.SliceOfN(scalarGen(), 0, 5).Draw(t, "overSeq")

		got := Merge(map[string]any{"values": baseSeq}, map[string]any{"values": overSeq})

		if diff := cmp.Diff(overSeq, got["values"].([]any), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("sequence not replaced wholesale:\n%s", diff)
		}
	})
}
