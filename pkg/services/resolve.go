package services

import (
	"section-cms/pkg/catalog"
	"section-cms/pkg/metrics"
	"section-cms/pkg/models"
	"section-cms/pkg/resolver"
)

// sectionResolver logs through the current global logger on every call, so
// CLI log settings applied after package init still take effect.
var sectionResolver = resolver.New(resolver.WithObserver(metrics.ObserveResolver))

// ResolveSection resolves one section payload against the catalog. The only
// error is an unknown section family; variant and content problems are
// corrected silently.
func ResolveSection(section models.Section) (models.ResolvedSection, error) {
	c, err := GetCatalog()
	if err != nil {
		return models.ResolvedSection{}, err
	}
	return resolveWith(c, section)
}

func resolveWith(c *catalog.Catalog, section models.Section) (models.ResolvedSection, error) {
	family, err := c.Family(section.Component)
	if err != nil {
		return models.ResolvedSection{}, err
	}
	metrics.ResolutionsTotal.WithLabelValues(family.Name).Inc()

	res := sectionResolver.Resolve(catalog.Table(family), section.Type, section.Content)
	return models.ResolvedSection{
		ID:        section.ID,
		Component: section.Component,
		Type:      section.Type,
		Variant:   res.Variant,
		Corrected: res.Corrected,
		Fallbacks: res.Fallbacks,
		Config:    res.Config,
	}, nil
}
