package resolver

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func categoriesTable() Table {
	return Table{
		Section: "categories",
		Variants: []Variant{
			{
				Key:      "category1",
				Required: []string{"categories"},
				Defaults: map[string]any{
					"page":       map[string]any{"title": "Shop by Category", "description": "Browse"},
					"categories": []any{map[string]any{"name": "Shoes"}},
				},
			},
			{
				Key:      "category3",
				Required: []string{"categories"},
				Defaults: map[string]any{
					"page": map[string]any{
						"title":       "Top Categories",
						"description": "Explore our most popular collections",
					},
					"categories": []any{
						map[string]any{"name": "Laptop & PC", "image": "/images/laptop.png"},
						map[string]any{"name": "Watches", "image": "/images/watch.png"},
					},
				},
			},
		},
	}
}

func quietResolver(opts ...Option) *Resolver {
	return New(append([]Option{WithLogger(zerolog.Nop())}, opts...)...)
}

func TestResolve_EmptyOverrideReturnsDefaults(t *testing.T) {
	table := categoriesTable()
	r := quietResolver()

	for _, v := range table.Variants {
		for name, overrides := range map[string]map[string]any{
			"nil":           nil,
			"empty":         {},
			"other variant": {"unrelated": map[string]any{"page": map[string]any{"title": "X"}}},
		} {
			res := r.Resolve(table, v.Key, overrides)
			assert.False(t, res.Corrected, "%s/%s", v.Key, name)
			assert.Empty(t, res.Fallbacks, "%s/%s", v.Key, name)
			if diff := cmp.Diff(v.Defaults, res.Config); diff != "" {
				t.Errorf("%s/%s: resolved differs from defaults (-want +got):\n%s", v.Key, name, diff)
			}
		}
	}
}

func TestResolve_ScalarOverrideWins(t *testing.T) {
	res := quietResolver().Resolve(categoriesTable(), "category1", map[string]any{
		"category1": map[string]any{"page": map[string]any{"title": "Custom"}},
	})
	assert.Equal(t, "Custom", res.Config["page"].(map[string]any)["title"])
	assert.Equal(t, "Browse", res.Config["page"].(map[string]any)["description"])
}

func TestResolve_SequenceReplacedNotConcatenated(t *testing.T) {
	table := Table{Section: "our-values", Variants: []Variant{{
		Key:      "values1",
		Required: []string{"values"},
		Defaults: map[string]any{"values": []any{"A", "B"}},
	}}}

	res := quietResolver().Resolve(table, "values1", map[string]any{
		"values1": map[string]any{"values": []any{"C"}},
	})
	assert.Equal(t, []any{"C"}, res.Config["values"])
}

func TestResolve_RequiredFieldFallback(t *testing.T) {
	table := categoriesTable()
	want := table.Variants[1].Defaults["categories"]

	tests := []struct {
		name   string
		value  any
		reason string
	}{
		{name: "empty array", value: []any{}, reason: "empty"},
		{name: "not an array", value: "Laptop", reason: "not a sequence"},
		{name: "mapping", value: map[string]any{"name": "x"}, reason: "not a sequence"},
		{name: "null", value: nil, reason: "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []Event
			r := quietResolver(WithObserver(func(e Event) { events = append(events, e) }))

			res := r.Resolve(table, "category3", map[string]any{
				"category3": map[string]any{"categories": tt.value},
			})

			assert.Equal(t, want, res.Config["categories"])
			assert.Equal(t, []string{"categories"}, res.Fallbacks)
			require.Len(t, events, 1)
			assert.Equal(t, EventFieldFallback, events[0].Kind)
			assert.Equal(t, "categories", events[0].Field)
			assert.Equal(t, tt.reason, events[0].Reason)
		})
	}
}

func TestResolve_FallbackLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	r := New(WithLogger(zerolog.New(&buf)))

	r.Resolve(categoriesTable(), "category1", map[string]any{
		"category1": map[string]any{"categories": []any{}},
	})

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"field":"categories"`)
	assert.Contains(t, out, `"variant":"category1"`)
}

func TestResolve_UnknownVariantUsesFirstDeclared(t *testing.T) {
	table := categoriesTable()
	overrides := map[string]any{
		"category1": map[string]any{"page": map[string]any{"title": "From override"}},
	}
	var events []Event
	r := quietResolver(WithObserver(func(e Event) { events = append(events, e) }))

	got := r.Resolve(table, "nonexistent-variant", overrides)
	want := r.Resolve(table, "category1", overrides)

	assert.True(t, got.Corrected)
	assert.Equal(t, "category1", got.Variant)
	assert.Equal(t, "nonexistent-variant", got.Requested)
	if diff := cmp.Diff(want.Config, got.Config); diff != "" {
		t.Errorf("unknown variant resolved differently (-want +got):\n%s", diff)
	}
	require.Len(t, events, 1)
	assert.Equal(t, EventVariantCorrected, events[0].Kind)
}

func TestResolve_NonMappingOverrideIsIgnored(t *testing.T) {
	table := categoriesTable()
	for _, override := range []any{"text", 42, []any{1, 2}, nil} {
		res := quietResolver().Resolve(table, "category1", map[string]any{"category1": override})
		if diff := cmp.Diff(table.Variants[0].Defaults, res.Config); diff != "" {
			t.Errorf("override %v changed result:\n%s", override, diff)
		}
	}
}

func TestResolve_DoesNotMutateInputs(t *testing.T) {
	table := categoriesTable()
	overrides := map[string]any{
		"category3": map[string]any{
			"page":       map[string]any{"title": "X"},
			"categories": []any{},
		},
	}
	defaultsBefore := Normalize(table.Variants[1].Defaults)
	overridesBefore := Normalize(overrides)

	res := quietResolver().Resolve(table, "category3", overrides)
	res.Config["page"].(map[string]any)["description"] = "mutated"
	res.Config["categories"].([]any)[0].(map[string]any)["name"] = "mutated"

	if diff := cmp.Diff(defaultsBefore, table.Variants[1].Defaults); diff != "" {
		t.Errorf("defaults mutated:\n%s", diff)
	}
	if diff := cmp.Diff(overridesBefore, Normalize(overrides)); diff != "" {
		t.Errorf("overrides mutated:\n%s", diff)
	}
}

func TestResolve_NestedPartialOverride(t *testing.T) {
	table := Table{Section: "about", Variants: []Variant{{
		Key:      "about1",
		Defaults: map[string]any{"header": map[string]any{"title": "A", "description": "B"}},
	}}}
	res := quietResolver().Resolve(table, "about1", map[string]any{
		"about1": map[string]any{"header": map[string]any{"title": "X"}},
	})
	assert.Equal(t, map[string]any{"title": "X", "description": "B"}, res.Config["header"])
}

func TestResolve_PageTitleOverrideKeepsDefaultCollection(t *testing.T) {
	table := categoriesTable()
	res := quietResolver().Resolve(table, "category3", map[string]any{
		"category3": map[string]any{"page": map[string]any{"title": "Custom Title"}},
	})

	page := res.Config["page"].(map[string]any)
	assert.Equal(t, "Custom Title", page["title"])
	assert.Equal(t, "Explore our most popular collections", page["description"])
	assert.Equal(t, table.Variants[1].Defaults["categories"], res.Config["categories"])
	assert.Len(t, res.Config["categories"], 2)
	assert.Empty(t, res.Fallbacks, "absent key is not a fallback")
}

func TestResolve_EmptyTable(t *testing.T) {
	res := quietResolver().Resolve(Table{Section: "empty"}, "x", nil)
	assert.True(t, res.Corrected)
	assert.Empty(t, res.Config)
}

func TestResolve_PackageLevelHelper(t *testing.T) {
	cfg := Resolve(categoriesTable(), "category3", nil)
	assert.Len(t, cfg["categories"], 2)
}

func TestResolve_PropertyBased_Deterministic(t *testing.T) {
	table := categoriesTable()
	r := quietResolver()
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.SampledFrom([]string{"category1", "category3", "bogus", ""}).Draw(t, "variant")
		override := mapGen(2).Draw(t, "override")
		overrides := map[string]any{key: override}

		first := r.Resolve(table, key, overrides)
		second := r.Resolve(table, key, overrides)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("resolution not deterministic:\n%s", diff)
		}

		seq, ok := AsSequence(first.Config["categories"])
		if !ok || len(seq) == 0 {
			t.Fatalf("required collection empty after resolve: %#v", first.Config["categories"])
		}
	})
}
