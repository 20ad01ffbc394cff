package handlers

import (
	"crypto/rand"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
)

// RequestLogger logs every request through zerolog.
func RequestLogger() gin.HandlerFunc {
	logger := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("remote", c.ClientIP()).
			Msg("request")
	}
}

// RegisterAPI mounts the JSON API on group. Callers add authentication.
func RegisterAPI(api *gin.RouterGroup) {
	api.GET("/sections", ListSections)
	api.GET("/sections/:name", GetSection)
	api.POST("/resolve", ResolveSection)
	api.POST("/validate", ValidateSection)

	api.GET("/pages", ListPages)
	api.GET("/page", GetPage)
	api.GET("/page/resolved", GetResolvedPage)
	api.GET("/page/diff", GetPageDiff)
	api.POST("/page", CreatePage)
	api.POST("/page/section", SaveSection)
	api.POST("/page/section/remove", RemoveSection)

	api.GET("/media", ListMedia)
	api.POST("/media", UploadMedia)
	api.POST("/media/delete", DeleteMedia)
	api.GET("/media/raw", ServeMediaRaw)

	api.POST("/build", HandleBuild)
	api.POST("/sync", HandleSync)
	api.POST("/publish", HandlePublish)
}

// sessionKey returns the cookie signing key. Without SESSION_SECRET a random
// per-process key is used, so sessions do not survive a restart.
func sessionKey() []byte {
	if config.SessionSecret != "" {
		return []byte(config.SessionSecret)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	logger := log.WithComponent("http")
	logger.Warn().Msg("SESSION_SECRET is empty; using a random session key")
	return key
}

// NewRouter builds the full application router.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	store := cookie.NewStore(sessionKey())
	r.Use(sessions.Sessions("section-cms", store))

	if matches, _ := filepath.Glob(config.TemplatesGlob); len(matches) > 0 {
		r.LoadHTMLGlob(config.TemplatesGlob)
	}
	r.Static(config.PreviewURL, config.PublicPath)
	r.Static("/static", "./static")

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/login", LoginPage)
	r.GET("/login/github", GithubLogin)
	r.GET("/auth/callback", AuthCallback)
	r.GET("/logout", Logout)

	authorized := r.Group("/")
	authorized.Use(AuthRequired)
	{
		authorized.GET("/", func(c *gin.Context) { c.HTML(http.StatusOK, "index.html", nil) })
		authorized.GET("/section/preview", PreviewSection)
		RegisterAPI(authorized.Group("/api"))
	}
	return r
}
