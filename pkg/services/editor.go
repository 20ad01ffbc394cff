package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"section-cms/pkg/metrics"
	"section-cms/pkg/models"
	"section-cms/pkg/resolver"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotCollection   = errors.New("field is not a list")
	ErrInvalidField    = errors.New("invalid field path")
)

// SectionEditor holds the editable content of one section while an admin
// works on it. Every edit replaces the content with a new value; values
// returned by Content are never modified afterwards.
type SectionEditor struct {
	family    *models.SectionFamily
	variant   *models.VariantSpec
	id        string
	component string

	content map[string]any
	saved   map[string]any
}

// NewSectionEditor seeds an editor from section.Content[section.Type], or
// from the variant defaults when the section has no content for its type.
// Unknown types select the first declared variant.
func NewSectionEditor(family *models.SectionFamily, section models.Section) *SectionEditor {
	variant := family.VariantOrDefault(section.Type)
	e := &SectionEditor{
		family:    family,
		variant:   variant,
		id:        section.ID,
		component: section.Component,
	}
	if e.component == "" {
		e.component = family.Name
	}

	if existing, ok := resolver.AsMap(section.Content[variant.Key]); ok {
		e.content = existing
		e.saved = resolver.NormalizeMap(existing)
	} else {
		e.content = resolver.NormalizeMap(variant.Defaults)
	}
	return e
}

// Type returns the variant key being edited.
func (e *SectionEditor) Type() string {
	return e.variant.Key
}

// Content returns a copy of the current content.
func (e *SectionEditor) Content() map[string]any {
	return resolver.NormalizeMap(e.content)
}

// SetContent replaces the whole content.
func (e *SectionEditor) SetContent(content map[string]any) {
	e.content = resolver.NormalizeMap(content)
}

// SetField sets a dotted path (header.title), creating intermediate
// mappings as needed.
func (e *SectionEditor) SetField(path string, value any) error {
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: %q", ErrInvalidField, path)
		}
	}

	next := resolver.NormalizeMap(e.content)
	cur := next
	for _, p := range parts[:len(parts)-1] {
		child, exists := cur[p]
		if !exists || child == nil {
			m := map[string]any{}
			cur[p] = m
			cur = m
			continue
		}
		m, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %q is not an object", ErrInvalidField, p)
		}
		cur = m
	}
	cur[parts[len(parts)-1]] = resolver.Normalize(value)
	e.content = next
	return nil
}

// AppendItem adds item at the end of a list field. A missing field starts a
// new list.
func (e *SectionEditor) AppendItem(field string, item any) error {
	items, err := e.list(field, true)
	if err != nil {
		return err
	}
	next := make([]any, 0, len(items)+1)
	next = append(next, items...)
	next = append(next, resolver.Normalize(item))
	return e.replaceList(field, next)
}

// UpdateItem replaces the item at index.
func (e *SectionEditor) UpdateItem(field string, index int, item any) error {
	items, err := e.list(field, false)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, field, index)
	}
	next := make([]any, len(items))
	copy(next, items)
	next[index] = resolver.Normalize(item)
	return e.replaceList(field, next)
}

// RemoveItem drops the item at index.
func (e *SectionEditor) RemoveItem(field string, index int) error {
	items, err := e.list(field, false)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, field, index)
	}
	next := make([]any, 0, len(items)-1)
	for i, it := range items {
		if i != index {
			next = append(next, it)
		}
	}
	return e.replaceList(field, next)
}

func (e *SectionEditor) list(field string, allowMissing bool) ([]any, error) {
	value, exists := e.content[field]
	if !exists || value == nil {
		if allowMissing {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotCollection, field)
	}
	items, ok := resolver.AsSequence(value)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCollection, field)
	}
	return items, nil
}

func (e *SectionEditor) replaceList(field string, items []any) error {
	next := make(map[string]any, len(e.content)+1)
	for k, v := range e.content {
		next[k] = v
	}
	next[field] = items
	e.content = next
	return nil
}

// Validate runs the form rules of the selected variant.
func (e *SectionEditor) Validate() []string {
	return ValidateContent(e.variant, e.content)
}

// Changed reports whether content differs from the last saved content.
func (e *SectionEditor) Changed() bool {
	if e.saved == nil {
		return true
	}
	return !cmp.Equal(canonicalJSON(e.saved), canonicalJSON(e.content))
}

// canonicalJSON round-trips v through encoding/json so that values decoded
// from YAML (int) and from JSON (float64) compare equal.
func canonicalJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// Payload wraps the current content the way renderers consume it.
func (e *SectionEditor) Payload() models.Section {
	return models.Section{
		ID:        e.id,
		Component: e.component,
		Type:      e.variant.Key,
		Content:   map[string]any{e.variant.Key: e.Content()},
	}
}

// Save validates the content and hands the payload to onSave. It returns
// false without calling onSave when nothing changed since the last save.
func (e *SectionEditor) Save(onSave func(models.Section) error) (bool, error) {
	if msgs := e.Validate(); len(msgs) > 0 {
		metrics.FormRejectionsTotal.WithLabelValues(e.family.Name).Inc()
		return false, &ValidationError{Messages: msgs}
	}
	if !e.Changed() {
		return false, nil
	}
	if err := onSave(e.Payload()); err != nil {
		return false, err
	}
	e.saved = resolver.NormalizeMap(e.content)
	return true, nil
}
