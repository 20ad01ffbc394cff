package models

// Section is one entry of a page's section list. Content is keyed by
// variant: content[type] holds the override for the selected variant.
type Section struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Component string         `json:"component" yaml:"component" toml:"component"`
	Type      string         `json:"type" yaml:"type" toml:"type"`
	Content   map[string]any `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
}

// Page is a Hugo content file whose front matter lists sections.
type Page struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	FrontMatter map[string]any `json:"frontmatter,omitempty"`
	Sections    []Section      `json:"sections"`
	Body        string         `json:"body,omitempty"`
	Format      string         `json:"format,omitempty"` // yaml, toml, json
	IsDirty     bool           `json:"is_dirty"`
}

// PageSummary is the cached listing entry for a page.
type PageSummary struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Sections int    `json:"sections"`
	IsDirty  bool   `json:"is_dirty"`
}

// ResolvedSection is a section after config resolution.
type ResolvedSection struct {
	ID        string         `json:"id,omitempty"`
	Component string         `json:"component"`
	Type      string         `json:"type"`
	Variant   string         `json:"variant"`
	Corrected bool           `json:"corrected,omitempty"`
	Fallbacks []string       `json:"fallbacks,omitempty"`
	Config    map[string]any `json:"config,omitempty"`
	Error     string         `json:"error,omitempty"`
}
