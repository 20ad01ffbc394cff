package models

// SectionFamily is one kind of page section (categories, our-values, ...)
// together with its visual variants. Variant order is significant: the first
// variant is the fallback for unknown keys.
type SectionFamily struct {
	Name      string        `yaml:"name" json:"name" toml:"name"`
	Component string        `yaml:"component" json:"component" toml:"component"`
	Label     string        `yaml:"label,omitempty" json:"label,omitempty" toml:"label,omitempty"`
	Variants  []VariantSpec `yaml:"variants" json:"variants" toml:"variants"`
}

type VariantSpec struct {
	Key      string         `yaml:"key" json:"key" toml:"key"`
	Label    string         `yaml:"label,omitempty" json:"label,omitempty" toml:"label,omitempty"`
	Required []string       `yaml:"required,omitempty" json:"required,omitempty" toml:"required,omitempty"`
	Form     FormSpec       `yaml:"form,omitempty" json:"form,omitempty" toml:"form,omitempty"`
	Defaults map[string]any `yaml:"defaults" json:"defaults" toml:"defaults"`
}

// FormSpec lists what the admin form must enforce before saving.
type FormSpec struct {
	// Text holds dotted paths (page.title) that must be non-blank.
	Text []string `yaml:"text,omitempty" json:"text,omitempty" toml:"text,omitempty"`
	// Collections maps a collection field to the item fields each entry needs.
	Collections map[string][]string `yaml:"collections,omitempty" json:"collections,omitempty" toml:"collections,omitempty"`
}

// Variant returns the variant spec with the given key.
func (f *SectionFamily) Variant(key string) (*VariantSpec, bool) {
	for i := range f.Variants {
		if f.Variants[i].Key == key {
			return &f.Variants[i], true
		}
	}
	return nil, false
}

// VariantOrDefault returns the named variant, or the first declared one.
func (f *SectionFamily) VariantOrDefault(key string) *VariantSpec {
	if v, ok := f.Variant(key); ok {
		return v
	}
	if len(f.Variants) == 0 {
		return &VariantSpec{}
	}
	return &f.Variants[0]
}
