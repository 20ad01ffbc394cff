// Package resolver turns a section variant key and caller-supplied content
// into a fully populated section configuration.
//
// A section family declares its variants in order; each variant carries its
// built-in defaults and the collection fields that must never render empty.
// Resolution never fails: unknown variants fall back to the first declared
// variant, and missing or empty required collections fall back to the
// variant defaults with a logged warning.
package resolver

import (
	"github.com/rs/zerolog"

	"section-cms/pkg/log"
)

// Variant is one named visual style of a section family.
type Variant struct {
	Key      string
	Defaults map[string]any
	Required []string
}

// Table lists the variants of one section family in declaration order.
type Table struct {
	Section  string
	Variants []Variant
}

// Lookup returns the variant with the exact key.
func (t Table) Lookup(key string) (Variant, bool) {
	for _, v := range t.Variants {
		if v.Key == key {
			return v, true
		}
	}
	return Variant{}, false
}

// Default returns the first declared variant, or the zero Variant for an
// empty table.
func (t Table) Default() Variant {
	if len(t.Variants) == 0 {
		return Variant{}
	}
	return t.Variants[0]
}

// Keys returns the variant keys in declaration order.
func (t Table) Keys() []string {
	keys := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		keys[i] = v.Key
	}
	return keys
}

// Result is the outcome of one resolution.
type Result struct {
	Section   string
	Requested string
	Variant   string
	// Corrected is set when Requested was not a declared variant.
	Corrected bool
	// Fallbacks lists required fields replaced with their defaults.
	Fallbacks []string
	Config    map[string]any
}

// EventKind classifies resolver diagnostics.
type EventKind string

const (
	EventVariantCorrected EventKind = "variant_corrected"
	EventFieldFallback    EventKind = "field_fallback"
)

// Event is passed to observers for every silent correction.
type Event struct {
	Kind      EventKind
	Section   string
	Requested string
	Variant   string
	Field     string
	Reason    string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
		r.hasLogger = true
	}
}

// WithObserver registers a callback invoked for every correction.
func WithObserver(fn func(Event)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.observers = append(r.observers, fn)
		}
	}
}

// Resolver resolves section content. It holds no per-call state and is safe
// for concurrent use.
type Resolver struct {
	logger    zerolog.Logger
	hasLogger bool
	observers []func(Event)
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) log() zerolog.Logger {
	if r.hasLogger {
		return r.logger
	}
	return log.WithComponent("resolver")
}

func (r *Resolver) emit(ev Event) {
	for _, fn := range r.observers {
		fn(ev)
	}
}

// Resolve merges overridesByVariant[variant] onto the defaults of variant.
//
// overridesByVariant is the section content wrapper keyed by variant key.
// It may be nil, may omit the variant, or may hold a non-mapping value; all
// three mean "no override".
func (r *Resolver) Resolve(table Table, variantType string, overridesByVariant map[string]any) Result {
	res := Result{Section: table.Section, Requested: variantType}
	logger := r.log()

	variant, ok := table.Lookup(variantType)
	if !ok {
		variant = table.Default()
		res.Corrected = true
		logger.Debug().
			Str("section", table.Section).
			Str("requested", variantType).
			Str("variant", variant.Key).
			Msg("unknown variant, using default")
		r.emit(Event{
			Kind:      EventVariantCorrected,
			Section:   table.Section,
			Requested: variantType,
			Variant:   variant.Key,
		})
	}
	res.Variant = variant.Key

	override, _ := AsMap(overridesByVariant[variant.Key])
	config := Merge(variant.Defaults, override)

	for _, field := range variant.Required {
		reason := checkCollection(config[field])
		if reason == "" {
			continue
		}
		config[field] = Normalize(variant.Defaults[field])
		res.Fallbacks = append(res.Fallbacks, field)

		logger.Warn().
			Str("section", table.Section).
			Str("variant", variant.Key).
			Str("field", field).
			Str("reason", reason).
			Msg("required collection invalid, using default")
		r.emit(Event{
			Kind:      EventFieldFallback,
			Section:   table.Section,
			Requested: variantType,
			Variant:   variant.Key,
			Field:     field,
			Reason:    reason,
		})
	}

	res.Config = config
	return res
}

func checkCollection(value any) string {
	if value == nil {
		return "missing"
	}
	seq, ok := AsSequence(value)
	if !ok {
		return "not a sequence"
	}
	if len(seq) == 0 {
		return "empty"
	}
	return ""
}

var defaultResolver = New()

// Resolve resolves with a Resolver that logs through the package logger.
func Resolve(table Table, variantType string, overridesByVariant map[string]any) map[string]any {
	return defaultResolver.Resolve(table, variantType, overridesByVariant).Config
}
