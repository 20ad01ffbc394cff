package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"section-cms/pkg/config"
	"section-cms/pkg/services"
)

func ListMedia(c *gin.Context) {
	files, err := services.ListMediaFiles()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// UploadMedia stores the multipart "file" field. Non-image content is
// rejected with 415.
func UploadMedia(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	file, err := services.SaveMediaFile(header)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

// DeleteMedia answers 409 while sections still reference the file.
func DeleteMedia(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := services.DeleteMediaFile(req.Name); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func ServeMediaRaw(c *gin.Context) {
	full := services.SafeJoin(config.RepoPath, config.MediaFolder, c.Query("name"))
	if c.Query("name") == "" || full == "" {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(full)
}
