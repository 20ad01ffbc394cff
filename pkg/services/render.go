package services

import (
	"sort"

	"section-cms/pkg/catalog"
	"section-cms/pkg/models"
	"section-cms/pkg/resolver"
)

// SectionView is the view model handed to section templates.
type SectionView struct {
	Component string
	Label     string
	Variant   string
	// Collection names the first required collection; Items are its entries.
	Collection string
	Items      []map[string]any
	Fields     []ViewField
	Config     map[string]any
}

// ViewField is a top-level scalar or mapping of the resolved config.
type ViewField struct {
	Key   string
	Value any
}

// RenderSection builds the view of a resolved section. Item icon names are
// replaced by their registered asset (unknown names use the default icon).
func RenderSection(family *models.SectionFamily, res models.ResolvedSection) SectionView {
	variant := family.VariantOrDefault(res.Variant)
	view := SectionView{
		Component: family.Component,
		Label:     variant.Label,
		Variant:   variant.Key,
		Config:    res.Config,
	}
	if len(variant.Required) > 0 {
		view.Collection = variant.Required[0]
	}

	keys := make([]string, 0, len(res.Config))
	for k := range res.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == view.Collection {
			continue
		}
		view.Fields = append(view.Fields, ViewField{Key: k, Value: res.Config[k]})
	}

	if view.Collection == "" {
		return view
	}
	seq, _ := resolver.AsSequence(res.Config[view.Collection])
	for _, item := range seq {
		m, ok := resolver.AsMap(item)
		if !ok {
			m = map[string]any{"value": item}
		}
		if name, ok := m["icon"].(string); ok {
			icon := catalog.IconOrDefault(name)
			m["icon"] = icon.Name
			m["iconAsset"] = icon.Asset
		}
		view.Items = append(view.Items, m)
	}
	return view
}
