package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
)

const (
	sessionTokenKey = "access_token"
	sessionStateKey = "oauth_state"
)

// AuthRequired rejects requests without a session token: API calls get a
// 401, pages are redirected to the login page.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	token := session.Get(sessionTokenKey)
	if token == nil {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		} else {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
		}
		return
	}
	c.Next()
}

func LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

func GithubLogin(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to start login")
		return
	}
	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "Failed to start login")
		return
	}
	url := config.OauthConf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func AuthCallback(c *gin.Context) {
	logger := log.WithComponent("auth")
	session := sessions.Default(c)

	expected, _ := session.Get(sessionStateKey).(string)
	if expected == "" || c.Query("state") != expected {
		logger.Warn().Str("remote", c.ClientIP()).Msg("oauth state mismatch")
		c.String(http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	session.Delete(sessionStateKey)

	token, err := config.OauthConf.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.Error().Err(err).Msg("oauth exchange failed")
		c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
		return
	}

	session.Set(sessionTokenKey, token.AccessToken)
	if err := session.Save(); err != nil {
		logger.Error().Err(err).Msg("session save failed")
		c.String(http.StatusInternalServerError, "Session save failed")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}

func sessionToken(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(sessionTokenKey).(string)
	return token
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
