package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"section-cms/pkg/catalog"
	"section-cms/pkg/config"
	"section-cms/pkg/log"
	"section-cms/pkg/metrics"
	"section-cms/pkg/models"
)

var (
	catalogCache  *catalog.Catalog
	catalogMutex  sync.Mutex
	catalogLoaded bool
)

// GetCatalog returns the built-in catalog overlaid with the families found in
// config.CatalogPath. The result is cached until InvalidateCatalog.
func GetCatalog() (*catalog.Catalog, error) {
	catalogMutex.Lock()
	defer catalogMutex.Unlock()

	if catalogLoaded {
		return catalogCache, nil
	}

	c, err := loadCatalog(context.Background())
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CatalogReloadsTotal.WithLabelValues("ok").Inc()

	catalogCache = c
	catalogLoaded = true
	return catalogCache, nil
}

func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	builtin, err := catalog.Builtin()
	if err != nil {
		return nil, fmt.Errorf("builtin catalog: %w", err)
	}
	if config.CatalogPath == "" {
		return builtin, nil
	}
	extra, err := catalog.Load(ctx, os.DirFS(config.CatalogPath), config.CacheConcurrency)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", config.CatalogPath, err)
	}
	logger := log.WithComponent("catalog")
	logger.Info().
		Str("path", config.CatalogPath).
		Int("families", extra.Len()).
		Msg("loaded external section families")
	return builtin.Overlay(extra), nil
}

// InvalidateCatalog drops the cached catalog.
func InvalidateCatalog() {
	catalogMutex.Lock()
	defer catalogMutex.Unlock()
	catalogLoaded = false
	catalogCache = nil
}

// WatchCatalog invalidates the catalog whenever files in config.CatalogPath
// change. It returns immediately when no external catalog is configured.
func WatchCatalog(ctx context.Context) error {
	if config.CatalogPath == "" {
		return nil
	}
	logger := log.WithComponent("catalog")
	return catalog.Watch(ctx, logger, config.CatalogPath, 250*time.Millisecond, func() {
		InvalidateCatalog()
		if _, err := GetCatalog(); err != nil {
			logger.Error().Err(err).Msg("catalog reload failed")
			return
		}
		logger.Info().Msg("catalog reloaded")
	})
}

// sameFamily reports whether component names the family f.
func sameFamily(c *catalog.Catalog, component string, f *models.SectionFamily) bool {
	other, err := c.Family(component)
	return err == nil && other.Name == f.Name
}
