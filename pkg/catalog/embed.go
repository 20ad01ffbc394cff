package catalog

import "embed"

//go:embed sections/*.yml
var sectionFiles embed.FS
