package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"section-cms/pkg/models"
	"section-cms/pkg/resolver"
)

const sectionsKey = "sections"

// ParseFrontMatter splits a content file into front matter, body and the
// front matter format (yaml, toml or json).
func ParseFrontMatter(content []byte) (map[string]any, string, string, error) {
	str := normalizeLineEndings(string(content))

	if fm, body, ok := splitDelimited(str, "---"); ok {
		var out map[string]any
		if err := yaml.Unmarshal([]byte(fm), &out); err != nil {
			return nil, "", "", fmt.Errorf("yaml front matter: %w", err)
		}
		return resolver.NormalizeMap(out), body, "yaml", nil
	}
	if fm, body, ok := splitDelimited(str, "+++"); ok {
		var out map[string]any
		if err := toml.Unmarshal([]byte(fm), &out); err != nil {
			return nil, "", "", fmt.Errorf("toml front matter: %w", err)
		}
		return resolver.NormalizeMap(out), body, "toml", nil
	}
	if strings.HasPrefix(strings.TrimSpace(str), "{") {
		dec := json.NewDecoder(strings.NewReader(str))
		var out map[string]any
		if err := dec.Decode(&out); err != nil {
			return nil, "", "", fmt.Errorf("json front matter: %w", err)
		}
		rest := str[dec.InputOffset():]
		return resolver.NormalizeMap(out), strings.TrimSpace(rest), "json", nil
	}

	return nil, "", "", fmt.Errorf("unknown format")
}

// splitDelimited handles front matter fenced by delim lines.
func splitDelimited(str, delim string) (string, string, bool) {
	if !strings.HasPrefix(str, delim+"\n") {
		return "", "", false
	}
	rest := str[len(delim)+1:]
	if strings.HasPrefix(rest, delim+"\n") || rest == delim {
		return "", strings.TrimSpace(strings.TrimPrefix(rest, delim)), true
	}
	end := strings.Index(rest, "\n"+delim+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+delim) {
			return rest[:len(rest)-len(delim)-1], "", true
		}
		return "", "", false
	}
	return rest[:end], strings.TrimSpace(rest[end+len(delim)+2:]), true
}

// ConstructFileContent renders front matter and body back into a content file.
func ConstructFileContent(fm map[string]any, body string, format string) ([]byte, error) {
	normalizedFM := resolver.NormalizeMap(fm)

	var buf bytes.Buffer
	switch format {
	case "yaml":
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	case "toml":
		buf.WriteString("+++\n")
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
		buf.WriteString("+++\n")
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(normalizedFM); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// SectionsFromFrontMatter reads the section list of a page. Entries that are
// not mappings are dropped.
func SectionsFromFrontMatter(fm map[string]any) []models.Section {
	seq, ok := resolver.AsSequence(fm[sectionsKey])
	if !ok {
		return []models.Section{}
	}
	sections := make([]models.Section, 0, len(seq))
	for _, item := range seq {
		m, ok := resolver.AsMap(item)
		if !ok {
			continue
		}
		s := models.Section{
			ID:        stringValue(m["id"]),
			Component: stringValue(m["component"]),
			Type:      stringValue(m["type"]),
		}
		if content, ok := resolver.AsMap(m["content"]); ok {
			s.Content = content
		}
		sections = append(sections, s)
	}
	return sections
}

// SectionsToFrontMatter is the inverse of SectionsFromFrontMatter.
func SectionsToFrontMatter(sections []models.Section) []any {
	out := make([]any, len(sections))
	for i, s := range sections {
		entry := map[string]any{
			"component": s.Component,
			"type":      s.Type,
		}
		if s.ID != "" {
			entry["id"] = s.ID
		}
		if len(s.Content) > 0 {
			entry["content"] = resolver.NormalizeMap(s.Content)
		}
		out[i] = entry
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}
