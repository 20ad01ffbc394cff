package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"section-cms/pkg/log"
)

var (
	ListenAddr    = ":8080"
	AppURL        = "http://localhost:8080"
	SessionSecret = ""
	TemplatesGlob = "templates/*"

	RepoPath   = "./repo"
	PublicPath = "./repo/public"
	PreviewURL = "/preview/"
	ContentDir = "content"

	// Catalog settings. CatalogPath adds or replaces built-in section
	// families with the files found there.
	CatalogPath  = ""
	CatalogWatch = false

	// Cache settings
	CacheConcurrency  = 20
	FileReadHeadLimit = int64(4096)

	// Media settings
	MediaFolder       = "static/images/uploads"
	MediaPublicFolder = "/images/uploads"
	MediaMaxBytes     = int64(10 << 20)

	// Git settings
	GitUserEmail = "bot@section-cms.local"
	GitUserName  = "Section CMS Bot"
	GitBranch    = "main"
	GitRemote    = "origin"

	LogLevel = "info"
)

var OauthConf *oauth2.Config

// LoadEnvFile loads .env into the process environment without overriding
// variables that are already set.
func LoadEnvFile() error {
	return godotenv.Load()
}

// Init loads .env (if present) and the environment into the package
// variables.
func Init() {
	logger := log.WithComponent("config")
	if err := LoadEnvFile(); err != nil {
		logger.Debug().Msg("no .env file loaded")
	}

	ListenAddr = getEnv("LISTEN_ADDR", ":8080")
	AppURL = strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/")
	redirectURL := getEnv("GITHUB_REDIRECT_URL", AppURL+"/auth/callback")
	SessionSecret = os.Getenv("SESSION_SECRET")
	TemplatesGlob = getEnv("TEMPLATES_GLOB", "templates/*")

	RepoPath = getEnv("REPO_PATH", "./repo")
	PublicPath = getEnv("PUBLIC_PATH", RepoPath+"/public")
	ContentDir = getEnv("CONTENT_DIR", "content")

	CatalogPath = getEnv("CATALOG_PATH", "")
	CatalogWatch = getBool("CATALOG_WATCH", false)

	MediaFolder = getEnv("MEDIA_FOLDER", "static/images/uploads")
	MediaPublicFolder = getEnv("MEDIA_PUBLIC_FOLDER", "/images/uploads")
	MediaMaxBytes = getInt64("MEDIA_MAX_BYTES", 10<<20)

	GitUserEmail = getEnv("GIT_USER_EMAIL", "bot@section-cms.local")
	GitUserName = getEnv("GIT_USER_NAME", "Section CMS Bot")
	GitBranch = getEnv("GIT_BRANCH", "main")
	GitRemote = getEnv("GIT_REMOTE", "origin")

	CacheConcurrency = int(getInt64("CACHE_CONCURRENCY", 20))
	LogLevel = getEnv("LOG_LEVEL", "info")

	if SessionSecret == "" {
		logger.Warn().Msg("SESSION_SECRET is empty; sessions end when the server restarts")
	}

	OauthConf = &oauth2.Config{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		Scopes:       []string{"repo"},
		Endpoint:     github.Endpoint,
		RedirectURL:  redirectURL,
	}
}

// GetAppURL returns the external base URL without a trailing slash.
func GetAppURL() string {
	return AppURL
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, using default")
		return fallback
	}
	return b
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().Str("key", key).Str("value", v).Msg("invalid integer, using default")
		return fallback
	}
	return n
}
