package services

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"section-cms/pkg/config"
	"section-cms/pkg/models"
)

var (
	pageCache   []models.PageSummary
	cacheMutex  sync.Mutex
	cacheLoaded bool
)

// GetPagesCache returns the page index, building it on first use.
func GetPagesCache() ([]models.PageSummary, error) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if cacheLoaded {
		return pageCache, nil
	}

	contentDir := filepath.Join(config.RepoPath, config.ContentDir)
	var paths []string
	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dirtyFiles, _ := getGitDirtyFiles(config.RepoPath)

	pages := make([]models.PageSummary, len(paths))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(max(config.CacheConcurrency, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			relPath, _ := filepath.Rel(contentDir, path)
			repoRelPath, _ := filepath.Rel(config.RepoPath, path)

			summary := models.PageSummary{
				Path:    filepath.ToSlash(relPath),
				Title:   filepath.ToSlash(relPath),
				IsDirty: dirtyFiles[filepath.ToSlash(repoRelPath)],
			}
			if fm, err := readFrontMatterHead(path); err == nil {
				if t, ok := fm["title"].(string); ok && t != "" {
					summary.Title = t
				}
				summary.Sections = len(SectionsFromFrontMatter(fm))
			}
			pages[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })

	pageCache = pages
	cacheLoaded = true
	return pageCache, nil
}

// readFrontMatterHead parses the front matter of a page, reading the whole
// file only when the front matter does not fit in config.FileReadHeadLimit.
func readFrontMatterHead(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head, err := io.ReadAll(io.LimitReader(f, config.FileReadHeadLimit))
	if err != nil {
		return nil, err
	}
	if fm, _, _, err := ParseFrontMatter(head); err == nil {
		return fm, nil
	}
	rest, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	fm, _, _, err := ParseFrontMatter(append(head, rest...))
	return fm, err
}

func getGitDirtyFiles(dir string) (map[string]bool, error) {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	dirty := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}
		path := strings.TrimSpace(line[3:])
		path = strings.Trim(path, "\"")
		dirty[path] = true
	}
	return dirty, nil
}

// InvalidateCache drops the page index.
func InvalidateCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	cacheLoaded = false
	pageCache = nil
}
