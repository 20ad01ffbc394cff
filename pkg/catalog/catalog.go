// Package catalog loads section family definitions (variants, defaults and
// form rules) from YAML, TOML or JSON files.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"section-cms/pkg/models"
	"section-cms/pkg/resolver"
)

var ErrUnknownFamily = errors.New("unknown section family")

// Catalog is an immutable set of section families.
type Catalog struct {
	families map[string]*models.SectionFamily
}

// New builds a catalog from already decoded families, validating each one.
func New(families ...*models.SectionFamily) (*Catalog, error) {
	c := &Catalog{families: make(map[string]*models.SectionFamily, len(families))}
	for _, f := range families {
		if err := validateFamily(f); err != nil {
			return nil, err
		}
		if _, dup := c.families[f.Name]; dup {
			return nil, fmt.Errorf("duplicate section family %q", f.Name)
		}
		c.families[f.Name] = f
	}
	return c, nil
}

// Load parses every family file at the root of fsys. Files are decoded in
// parallel with at most concurrency workers; files with an unknown extension
// are skipped.
func Load(ctx context.Context, fsys fs.FS, concurrency int) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || formatOf(e.Name()) == "" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	families := make([]*models.SectionFamily, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			f, err := Decode(data, formatOf(name))
			if err != nil {
				return fmt.Errorf("decode %s: %w", name, err)
			}
			families[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(families...)
}

func formatOf(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".yml", ".yaml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	}
	return ""
}

// Decode parses one family definition in the given format (yaml, toml, json).
func Decode(data []byte, format string) (*models.SectionFamily, error) {
	var f models.SectionFamily
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	for i := range f.Variants {
		f.Variants[i].Defaults = resolver.NormalizeMap(numbersToNative(f.Variants[i].Defaults))
	}
	return &f, nil
}

// numbersToNative replaces json.Number leaves with int64 or float64.
func numbersToNative(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = numberValue(v)
	}
	return out
}

func numberValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		return numbersToNative(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = numberValue(t[i])
		}
		return out
	}
	return v
}

func validateFamily(f *models.SectionFamily) error {
	if f == nil {
		return errors.New("nil section family")
	}
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("section family without name")
	}
	if len(f.Variants) == 0 {
		return fmt.Errorf("section family %q declares no variants", f.Name)
	}
	seen := make(map[string]bool, len(f.Variants))
	for _, v := range f.Variants {
		if v.Key == "" {
			return fmt.Errorf("section family %q: variant without key", f.Name)
		}
		if seen[v.Key] {
			return fmt.Errorf("section family %q: duplicate variant %q", f.Name, v.Key)
		}
		seen[v.Key] = true
		for _, field := range v.Required {
			seq, ok := resolver.AsSequence(v.Defaults[field])
			if !ok || len(seq) == 0 {
				return fmt.Errorf("section family %q variant %q: required field %q has no default items", f.Name, v.Key, field)
			}
		}
	}
	return nil
}

// Family looks a family up by name, or case-insensitively by component.
func (c *Catalog) Family(name string) (*models.SectionFamily, error) {
	if f, ok := c.families[name]; ok {
		return f, nil
	}
	for _, f := range c.families {
		if f.Component != "" && strings.EqualFold(f.Component, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, name)
}

// Families returns all families sorted by name.
func (c *Catalog) Families() []*models.SectionFamily {
	out := make([]*models.SectionFamily, 0, len(c.families))
	for _, f := range c.families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of families.
func (c *Catalog) Len() int {
	return len(c.families)
}

// Overlay returns a new catalog where families from other replace same-named
// families of c.
func (c *Catalog) Overlay(other *Catalog) *Catalog {
	out := &Catalog{families: make(map[string]*models.SectionFamily, len(c.families))}
	for k, f := range c.families {
		out.families[k] = f
	}
	if other != nil {
		for k, f := range other.families {
			out.families[k] = f
		}
	}
	return out
}

// Table converts a family into the resolver's variant table.
func Table(f *models.SectionFamily) resolver.Table {
	t := resolver.Table{Section: f.Name, Variants: make([]resolver.Variant, len(f.Variants))}
	for i, v := range f.Variants {
		t.Variants[i] = resolver.Variant{
			Key:      v.Key,
			Defaults: v.Defaults,
			Required: v.Required,
		}
	}
	return t
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Builtin returns the catalog embedded in the binary.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		sub, err := fs.Sub(sectionFiles, "sections")
		if err != nil {
			builtinErr = err
			return
		}
		builtin, builtinErr = Load(context.Background(), sub, 4)
	})
	return builtin, builtinErr
}
