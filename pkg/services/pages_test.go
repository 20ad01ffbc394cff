package services

import (
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"section-cms/pkg/catalog"
	"section-cms/pkg/models"
)

const homePage = `---
title: Home
sections:
  - id: cats
    component: Categories
    type: category3
    content:
      category3:
        page:
          title: Custom Title
        categories: []
  - id: ghost
    component: Carousel
    type: carousel1
  - id: vals
    component: OurValues
    type: values7
---

Welcome.
`

func categoriesContent(title string) map[string]any {
	return map[string]any{
		"category3": map[string]any{
			"page": map[string]any{"title": title},
			"categories": []any{
				map[string]any{"name": "Bags", "image": "/images/bags.png"},
			},
		},
	}
}

func TestCreatePage(t *testing.T) {
	useTempRepo(t)

	page, err := CreatePage("landing/home", "Home")
	require.NoError(t, err)
	assert.Equal(t, "landing/home.md", page.Path)

	got, err := GetPage("landing/home.md")
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Title)
	assert.Equal(t, "yaml", got.Format)
	assert.Equal(t, true, got.FrontMatter["draft"])
	assert.Empty(t, got.Sections)

	_, err = CreatePage("landing/home.md", "Again")
	assert.True(t, errors.Is(err, os.ErrExist))
}

func TestGetPage_RejectsEscapingPaths(t *testing.T) {
	useTempRepo(t)
	for _, path := range []string{"", "../secrets.md", "a/../../b.md"} {
		_, err := GetPage(path)
		assert.ErrorIs(t, err, ErrInvalidPath, path)
	}
}

func TestResolvePage(t *testing.T) {
	repo := useTempRepo(t)
	writePage(t, repo, "home.md", homePage)

	resolved, err := ResolvePage("home.md")
	require.NoError(t, err)
	require.Len(t, resolved, 3)

	cats := resolved[0]
	assert.Empty(t, cats.Error)
	assert.Equal(t, "category3", cats.Variant)
	assert.False(t, cats.Corrected)
	assert.Equal(t, []string{"categories"}, cats.Fallbacks)
	page := cats.Config["page"].(map[string]any)
	assert.Equal(t, "Custom Title", page["title"])
	assert.Equal(t, "Explore our most popular collections", page["description"])
	assert.Len(t, cats.Config["categories"], 2)

	ghost := resolved[1]
	assert.Equal(t, "ghost", ghost.ID)
	assert.Contains(t, ghost.Error, "Carousel")
	assert.Nil(t, ghost.Config)

	vals := resolved[2]
	assert.True(t, vals.Corrected)
	assert.Equal(t, "values1", vals.Variant)
	assert.Equal(t, "Our Values", vals.Config["header"].(map[string]any)["title"])
}

func TestUpsertSection(t *testing.T) {
	useTempRepo(t)
	_, err := CreatePage("home", "Home")
	require.NoError(t, err)

	saved, changed, err := UpsertSection("home.md", models.Section{
		Component: "Categories",
		Type:      "category3",
		Content:   categoriesContent("Custom Title"),
	})
	require.NoError(t, err)
	assert.True(t, changed)
	_, err = uuid.Parse(saved.ID)
	require.NoError(t, err)

	page, err := GetPage("home.md")
	require.NoError(t, err)
	require.Len(t, page.Sections, 1)
	assert.Equal(t, saved.ID, page.Sections[0].ID)
	assert.Equal(t, "Home", page.Title)

	t.Run("unchanged content is not rewritten", func(t *testing.T) {
		again := models.Section{ID: saved.ID, Component: "Categories", Type: "category3", Content: categoriesContent("Custom Title")}
		_, changed, err := UpsertSection("home.md", again)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("update keeps position", func(t *testing.T) {
		update := models.Section{ID: saved.ID, Component: "Categories", Type: "category3", Content: categoriesContent("Renamed")}
		_, changed, err := UpsertSection("home.md", update)
		require.NoError(t, err)
		assert.True(t, changed)

		resolved, err := ResolvePage("home.md")
		require.NoError(t, err)
		require.Len(t, resolved, 1)
		assert.Equal(t, "Renamed", resolved[0].Config["page"].(map[string]any)["title"])
	})

	t.Run("validation failure", func(t *testing.T) {
		_, _, err := UpsertSection("home.md", models.Section{
			Component: "Categories",
			Type:      "category3",
			Content:   map[string]any{"category3": map[string]any{"page": map[string]any{"title": "Only a title"}}},
		})
		ve, ok := IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, []string{"categories is required"}, ve.Messages)
	})

	t.Run("unknown section id", func(t *testing.T) {
		_, _, err := UpsertSection("home.md", models.Section{ID: "nope", Component: "Categories", Type: "category3"})
		assert.ErrorIs(t, err, ErrSectionNotFound)
	})

	t.Run("unknown family", func(t *testing.T) {
		_, _, err := UpsertSection("home.md", models.Section{Component: "Carousel", Type: "carousel1"})
		assert.ErrorIs(t, err, catalog.ErrUnknownFamily)
	})
}

func TestUpsertSection_ChangesComponent(t *testing.T) {
	repo := useTempRepo(t)
	writePage(t, repo, "home.md", homePage)

	saved, changed, err := UpsertSection("home.md", models.Section{
		ID:        "cats",
		Component: "OurValues",
		Type:      "values2",
		Content: map[string]any{"values2": map[string]any{
			"header": map[string]any{"title": "Trust", "subtitle": "Always"},
			"values": []any{map[string]any{"title": "Honesty", "description": "Clear pricing."}},
		}},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "OurValues", saved.Component)

	page, err := GetPage("home.md")
	require.NoError(t, err)
	require.Len(t, page.Sections, 3)
	got := page.Sections[0]
	assert.Equal(t, "cats", got.ID)
	assert.Equal(t, "OurValues", got.Component)
	assert.Equal(t, "values2", got.Type)
	assert.Contains(t, got.Content, "values2")
	assert.NotContains(t, got.Content, "category3")

	resolved, err := ResolvePage("home.md")
	require.NoError(t, err)
	assert.Equal(t, "OurValues", resolved[0].Component)
	assert.Equal(t, "values2", resolved[0].Variant)
	assert.Equal(t, "Trust", resolved[0].Config["header"].(map[string]any)["title"])
}

func TestRemoveSection(t *testing.T) {
	repo := useTempRepo(t)
	writePage(t, repo, "home.md", homePage)

	require.NoError(t, RemoveSection("home.md", "ghost"))
	page, err := GetPage("home.md")
	require.NoError(t, err)
	require.Len(t, page.Sections, 2)
	assert.Equal(t, "cats", page.Sections[0].ID)
	assert.Equal(t, "vals", page.Sections[1].ID)
	assert.Equal(t, "Welcome.", page.Body)

	assert.ErrorIs(t, RemoveSection("home.md", "ghost"), ErrSectionNotFound)
}

func TestGetPagesCache(t *testing.T) {
	repo := useTempRepo(t)
	writePage(t, repo, "home.md", homePage)
	writePage(t, repo, "about/index.md", "+++\ntitle = \"About\"\n+++\n")
	writePage(t, repo, "notes.txt", "ignored")

	pages, err := GetPagesCache()
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, models.PageSummary{Path: "about/index.md", Title: "About"}, pages[0])
	assert.Equal(t, models.PageSummary{Path: "home.md", Title: "Home", Sections: 3}, pages[1])

	_, err = CreatePage("contact", "")
	require.NoError(t, err)
	pages, err = GetPagesCache()
	require.NoError(t, err)
	assert.Len(t, pages, 3)
}
