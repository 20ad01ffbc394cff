package services

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
	"section-cms/pkg/models"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// useTempRepo points the content settings at a fresh directory for the
// duration of the test.
func useTempRepo(t *testing.T) string {
	t.Helper()

	prevRepo, prevContent, prevCatalog := config.RepoPath, config.ContentDir, config.CatalogPath
	repo := t.TempDir()
	config.RepoPath = repo
	config.ContentDir = "content"
	config.CatalogPath = ""
	InvalidateCache()
	InvalidateCatalog()

	t.Cleanup(func() {
		config.RepoPath, config.ContentDir, config.CatalogPath = prevRepo, prevContent, prevCatalog
		InvalidateCache()
		InvalidateCatalog()
	})
	return repo
}

func writePage(t *testing.T, repo, path, content string) {
	t.Helper()
	full := filepath.Join(repo, "content", path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

func builtinFamily(t *testing.T, name string) *models.SectionFamily {
	t.Helper()
	c, err := GetCatalog()
	require.NoError(t, err)
	f, err := c.Family(name)
	require.NoError(t, err)
	return f
}
