// Package metrics provides Prometheus metrics for section resolution and
// editing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"section-cms/pkg/resolver"
)

var (
	// ResolutionsTotal counts resolutions by section family.
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "section_cms_resolutions_total",
		Help: "Total number of section config resolutions, by section.",
	}, []string{"section"})

	// VariantCorrectionsTotal counts unknown variant keys replaced by the
	// first declared variant.
	VariantCorrectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "section_cms_variant_corrections_total",
		Help: "Total number of unknown variant keys replaced by the default variant, by section.",
	}, []string{"section"})

	// FieldFallbacksTotal counts required collections replaced by defaults.
	FieldFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "section_cms_field_fallbacks_total",
		Help: "Total number of required collections replaced by their defaults, by section and field.",
	}, []string{"section", "field"})

	// FormRejectionsTotal counts section saves rejected by form validation.
	FormRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "section_cms_form_rejections_total",
		Help: "Total number of section saves rejected by validation, by section.",
	}, []string{"section"})

	// CatalogReloadsTotal counts catalog reloads by result.
	CatalogReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "section_cms_catalog_reloads_total",
		Help: "Total number of catalog reloads, by result (ok/error).",
	}, []string{"result"})
)

// ObserveResolver records resolver corrections. It is meant to be passed to
// resolver.WithObserver.
func ObserveResolver(ev resolver.Event) {
	switch ev.Kind {
	case resolver.EventVariantCorrected:
		VariantCorrectionsTotal.WithLabelValues(ev.Section).Inc()
	case resolver.EventFieldFallback:
		FieldFallbacksTotal.WithLabelValues(ev.Section, ev.Field).Inc()
	}
}
