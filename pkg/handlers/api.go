package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"section-cms/pkg/catalog"
	"section-cms/pkg/log"
	"section-cms/pkg/models"
	"section-cms/pkg/services"
)

// sectionRequest is the section entry contract: {component, type, content}.
type sectionRequest struct {
	ID        string         `json:"id"`
	Component string         `json:"component" binding:"required"`
	Type      string         `json:"type"`
	Content   map[string]any `json:"content"`
}

func (r sectionRequest) section() models.Section {
	return models.Section{ID: r.ID, Component: r.Component, Type: r.Type, Content: r.Content}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrUnknownFamily),
		errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrExist),
		errors.Is(err, services.ErrMediaInUse):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger := log.WithComponent("api")
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	if ve, ok := services.IsValidationError(err); ok {
		c.JSON(status, gin.H{"error": "Validation failed", "errors": ve.Messages})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func ListSections(c *gin.Context) {
	cat, err := services.GetCatalog()
	if err != nil {
		abortWithError(c, err)
		return
	}
	type variantInfo struct {
		Key      string   `json:"key"`
		Label    string   `json:"label,omitempty"`
		Required []string `json:"required,omitempty"`
	}
	type familyInfo struct {
		Name      string        `json:"name"`
		Component string        `json:"component"`
		Label     string        `json:"label,omitempty"`
		Variants  []variantInfo `json:"variants"`
	}
	out := []familyInfo{}
	for _, f := range cat.Families() {
		info := familyInfo{Name: f.Name, Component: f.Component, Label: f.Label}
		for _, v := range f.Variants {
			info.Variants = append(info.Variants, variantInfo{Key: v.Key, Label: v.Label, Required: v.Required})
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, out)
}

func GetSection(c *gin.Context) {
	cat, err := services.GetCatalog()
	if err != nil {
		abortWithError(c, err)
		return
	}
	family, err := cat.Family(c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, family)
}

func ResolveSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	res, err := services.ResolveSection(req.section())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func ValidateSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	cat, err := services.GetCatalog()
	if err != nil {
		abortWithError(c, err)
		return
	}
	family, err := cat.Family(req.Component)
	if err != nil {
		abortWithError(c, err)
		return
	}
	editor := services.NewSectionEditor(family, req.section())
	msgs := editor.Validate()
	if msgs == nil {
		msgs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(msgs) == 0, "type": editor.Type(), "errors": msgs})
}

func ListPages(c *gin.Context) {
	pages, err := services.GetPagesCache()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pages"})
		return
	}
	c.JSON(http.StatusOK, pages)
}

func GetPage(c *gin.Context) {
	page, err := services.GetPage(c.Query("path"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func GetResolvedPage(c *gin.Context) {
	path := c.Query("path")
	sections, err := services.ResolvePage(path)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "sections": sections})
}

func CreatePage(c *gin.Context) {
	var req struct {
		Path  string `json:"path" binding:"required"`
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	page, err := services.CreatePage(req.Path, req.Title)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			c.JSON(http.StatusConflict, gin.H{"error": "File already exists"})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "created", "page": page})
}

func SaveSection(c *gin.Context) {
	var req struct {
		Path    string         `json:"path" binding:"required"`
		Section sectionRequest `json:"section"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	saved, changed, err := services.UpsertSection(req.Path, req.Section.section())
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := "saved"
	if !changed {
		status = "unchanged"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "section": saved})
}

func RemoveSection(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
		ID   string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := services.RemoveSection(req.Path, req.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func GetPageDiff(c *gin.Context) {
	diff, err := services.PageDiff(c.Request.Context(), c.Query("path"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	diffType := "git"
	if diff == "" {
		diffType = "none"
	}
	c.JSON(http.StatusOK, gin.H{"diff": diff, "type": diffType})
}

func PreviewSection(c *gin.Context) {
	var req sectionRequest
	req.Component = c.Query("component")
	req.Type = c.Query("type")
	if path, id := c.Query("path"), c.Query("id"); path != "" && id != "" {
		page, err := services.GetPage(path)
		if err != nil {
			abortWithError(c, err)
			return
		}
		found := false
		for _, s := range page.Sections {
			if s.ID == id {
				req = sectionRequest{ID: s.ID, Component: s.Component, Type: s.Type, Content: s.Content}
				found = true
				break
			}
		}
		if !found {
			abortWithError(c, services.ErrSectionNotFound)
			return
		}
	}

	cat, err := services.GetCatalog()
	if err != nil {
		abortWithError(c, err)
		return
	}
	family, err := cat.Family(req.Component)
	if err != nil {
		abortWithError(c, err)
		return
	}
	res, err := services.ResolveSection(req.section())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.HTML(http.StatusOK, "section.html", services.RenderSection(family, res))
}

func HandleBuild(c *gin.Context) {
	out, err := services.BuildSite(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": out})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": out})
}

func HandleSync(c *gin.Context) {
	out, err := services.SyncRepo(c.Request.Context(), sessionToken(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": out})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": out})
}

func HandlePublish(c *gin.Context) {
	out, err := services.PublishRepo(c.Request.Context(), sessionToken(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": out})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": out})
}
