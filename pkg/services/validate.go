package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"section-cms/pkg/catalog"
	"section-cms/pkg/models"
	"section-cms/pkg/resolver"
)

// ValidationError carries the human-readable problems that block a save.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// IsValidationError reports whether err is a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var formValidator = validator.New()

// ValidateContent checks section content against the form rules of a
// variant: required text paths must be non-blank, required collections need
// at least one item, required item fields must be non-blank and icon names
// must be registered. Messages are returned in a stable order.
func ValidateContent(spec *models.VariantSpec, content map[string]any) []string {
	content = resolver.NormalizeMap(content)
	var messages []string
	data := make(map[string]any)
	rules := make(map[string]any)
	// keys of the flattened data map, in message order
	var checks []string

	add := func(key string, value any, rule string) {
		data[key] = blankToNil(value)
		rules[key] = rule
		checks = append(checks, key)
	}

	for _, path := range spec.Form.Text {
		add(path, lookupPath(content, path), "required")
	}

	for _, field := range collectionFields(spec) {
		value := content[field]
		seq, isSeq := resolver.AsSequence(value)
		if value != nil && !isSeq {
			messages = append(messages, fmt.Sprintf("%s must be a list", field))
			continue
		}
		if value == nil {
			add(field, nil, "required,min=1")
		} else {
			add(field, seq, "required,min=1")
		}

		for i, item := range seq {
			m, ok := resolver.AsMap(item)
			if !ok {
				messages = append(messages, fmt.Sprintf("%s[%d] must be an object", field, i))
				continue
			}
			for _, itemField := range spec.Form.Collections[field] {
				add(fmt.Sprintf("%s[%d].%s", field, i, itemField), m[itemField], "required")
			}
		}
	}

	errs := formValidator.ValidateMap(data, rules)
	for _, key := range checks {
		err, failed := errs[key]
		if !failed {
			continue
		}
		messages = append(messages, describeFailure(key, err))
	}

	messages = append(messages, unknownIcons("", content)...)
	return messages
}

// collectionFields lists form collections plus resolver-required fields,
// sorted and deduplicated.
func collectionFields(spec *models.VariantSpec) []string {
	seen := make(map[string]bool)
	var out []string
	for field := range spec.Form.Collections {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	for _, field := range spec.Required {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

func describeFailure(key string, err any) string {
	var verrs validator.ValidationErrors
	if e, ok := err.(error); ok && errors.As(e, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "min":
			return fmt.Sprintf("%s must contain at least one item", key)
		case "required":
			return fmt.Sprintf("%s is required", key)
		}
	}
	return fmt.Sprintf("%s is invalid", key)
}

func blankToNil(v any) any {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return v
}

// lookupPath follows a dotted path through nested mappings.
func lookupPath(content map[string]any, path string) any {
	var cur any = content
	for _, part := range strings.Split(path, ".") {
		m, ok := resolver.AsMap(cur)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func unknownIcons(prefix string, value any) []string {
	var out []string
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			if k == "icon" {
				if name, ok := v[k].(string); ok && name != "" {
					if _, known := catalog.LookupIcon(name); !known {
						out = append(out, fmt.Sprintf("%s: unknown icon %q", path, name))
					}
				}
				continue
			}
			out = append(out, unknownIcons(path, v[k])...)
		}
	case []any:
		for i, item := range v {
			out = append(out, unknownIcons(fmt.Sprintf("%s[%d]", prefix, i), item)...)
		}
	}
	return out
}
