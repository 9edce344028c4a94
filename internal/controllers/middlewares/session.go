package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "session"
	currentUserKey    = "currentUser"
	currentSessionKey = "currentSession"
	// LoginPath страница, куда отправляются неаутентифицированные браузеры.
	LoginPath = "/login"
)

// Authorizer проверяет токен сессии.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*models.User, *models.Session, error)
}

// SessionGuard пропускает запрос дальше только с действующей сессией.
// Браузер без сессии получает 302 на LoginPath, API клиент 401 с JSON ошибкой.
// Пользователь и сессия доступны обработчикам через CurrentUser и CurrentSession.
func SessionGuard(authorizer Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			rejectUnauthenticated(c)
			return
		}

		user, session, err := authorizer.Authorize(c, token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				rejectUnauthenticated(c)
				return
			}
			_ = c.Error(fmt.Errorf("session guard: %w", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
				"code":  "INTERNAL_ERROR",
			})
			return
		}

		c.Set(currentUserKey, user)
		c.Set(currentSessionKey, session)
		c.Next()
	}
}

func rejectUnauthenticated(c *gin.Context) {
	if WantsHTML(c) {
		c.Redirect(http.StatusFound, LoginPath+"?code=UNAUTHENTICATED")
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "Authentication required",
		"code":  "UNAUTHENTICATED",
	})
}

// SessionToken достает токен сессии из cookie или заголовка Authorization: Bearer.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		if unescaped, unescErr := url.QueryUnescape(cookie); unescErr == nil {
			return unescaped
		}
		return cookie
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// CurrentUser возвращает пользователя, положенного в контекст SessionGuard.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentSession возвращает сессию, положенную в контекст SessionGuard.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(currentSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok
}

// WantsHTML Определяет, что запрос пришел из браузера, по заголовку Accept.
func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
