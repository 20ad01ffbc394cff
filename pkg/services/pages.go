package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
	"section-cms/pkg/models"
)

var ErrSectionNotFound = errors.New("section not found")

// GetPage reads and parses a page below the content directory.
func GetPage(path string) (*models.Page, error) {
	full, err := contentPath(config.RepoPath, config.ContentDir, path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, err
	}
	fm, body, format, err := ParseFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	page := &models.Page{
		Path:        path,
		FrontMatter: fm,
		Sections:    SectionsFromFrontMatter(fm),
		Body:        body,
		Format:      format,
	}
	if t, ok := fm["title"].(string); ok {
		page.Title = t
	}
	return page, nil
}

// SavePage writes a page back in its own front matter format.
func SavePage(page *models.Page) error {
	full, err := contentPath(config.RepoPath, config.ContentDir, page.Path)
	if err != nil {
		return err
	}

	fm := make(map[string]any, len(page.FrontMatter)+2)
	for k, v := range page.FrontMatter {
		fm[k] = v
	}
	if page.Title != "" {
		fm["title"] = page.Title
	}
	fm[sectionsKey] = SectionsToFrontMatter(page.Sections)

	format := page.Format
	if format == "" {
		format = "yaml"
	}
	data, err := ConstructFileContent(fm, page.Body, format)
	if err != nil {
		return fmt.Errorf("construct %s: %w", page.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return err
	}
	InvalidateCache()
	return nil
}

// CreatePage writes a new YAML front matter page with no sections.
func CreatePage(path, title string) (*models.Page, error) {
	if !strings.HasSuffix(path, ".md") {
		path += ".md"
	}
	full, err := contentPath(config.RepoPath, config.ContentDir, path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(full); err == nil {
		return nil, os.ErrExist
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	page := &models.Page{
		Path:        path,
		Title:       title,
		FrontMatter: map[string]any{"draft": true},
		Sections:    []models.Section{},
		Format:      "yaml",
	}
	if err := SavePage(page); err != nil {
		return nil, err
	}
	return page, nil
}

// ResolvePage resolves every section of a page. A section naming an unknown
// family carries an error message instead of failing the whole page.
func ResolvePage(path string) ([]models.ResolvedSection, error) {
	page, err := GetPage(path)
	if err != nil {
		return nil, err
	}
	c, err := GetCatalog()
	if err != nil {
		return nil, err
	}

	out := make([]models.ResolvedSection, 0, len(page.Sections))
	for _, s := range page.Sections {
		res, err := resolveWith(c, s)
		if err != nil {
			logger := log.WithComponent("pages")
			logger.Warn().
				Err(err).
				Str("page", path).
				Str("component", s.Component).
				Msg("section not resolvable")
			res = models.ResolvedSection{
				ID:        s.ID,
				Component: s.Component,
				Type:      s.Type,
				Error:     err.Error(),
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// UpsertSection validates section content through the form editor and
// stores it in the page. Sections without an id are appended with a new id.
// The bool result is false when the stored content was already identical.
func UpsertSection(path string, section models.Section) (models.Section, bool, error) {
	page, err := GetPage(path)
	if err != nil {
		return models.Section{}, false, err
	}
	c, err := GetCatalog()
	if err != nil {
		return models.Section{}, false, err
	}
	family, err := c.Family(section.Component)
	if err != nil {
		return models.Section{}, false, err
	}

	index := -1
	if section.ID != "" {
		for i, s := range page.Sections {
			if s.ID == section.ID {
				index = i
				break
			}
		}
		if index < 0 {
			return models.Section{}, false, fmt.Errorf("%w: %s", ErrSectionNotFound, section.ID)
		}
	} else {
		section.ID = uuid.NewString()
	}

	stored := models.Section{ID: section.ID, Component: section.Component, Type: section.Type}
	if index >= 0 && sameFamily(c, page.Sections[index].Component, family) {
		stored = page.Sections[index]
		stored.Type = section.Type
	}
	editor := NewSectionEditor(family, stored)
	incoming := NewSectionEditor(family, section)
	editor.SetContent(incoming.Content())

	var saved models.Section
	changed, err := editor.Save(func(payload models.Section) error {
		if index >= 0 {
			page.Sections[index] = payload
		} else {
			page.Sections = append(page.Sections, payload)
		}
		saved = payload
		return SavePage(page)
	})
	if err != nil {
		return models.Section{}, false, err
	}
	if !changed {
		return editor.Payload(), false, nil
	}
	return saved, true, nil
}

// RemoveSection deletes the section with the given id from a page.
func RemoveSection(path, id string) error {
	page, err := GetPage(path)
	if err != nil {
		return err
	}
	kept := make([]models.Section, 0, len(page.Sections))
	for _, s := range page.Sections {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(page.Sections) {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	page.Sections = kept
	return SavePage(page)
}
