package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthorizer struct {
	token string
	calls int
}

func (a *stubAuthorizer) Authorize(_ context.Context, token string) (*models.User, *models.Session, error) {
	a.calls++
	if token != a.token {
		return nil, nil, services.ErrUnauthenticated
	}
	return &models.User{ID: 1, Username: "alice"}, &models.Session{ID: "sid", UserID: 1}, nil
}

func guardedRouter(auth Authorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/dashboard", SessionGuard(auth), func(c *gin.Context) {
		user, okUser := CurrentUser(c)
		session, okSession := CurrentSession(c)
		if !okUser || !okSession {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, "%s:%s", user.Username, session.ID)
	})
	return r
}

func TestSessionGuard(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		status   int
		location string
		body     string
	}{
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"}) },
			status:  http.StatusOK,
			body:    "alice:sid",
		},
		{
			name:    "bearer",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			status:  http.StatusOK,
			body:    "alice:sid",
		},
		{
			name:    "no token api",
			prepare: func(_ *http.Request) {},
			status:  http.StatusUnauthorized,
			body:    `{"code":"UNAUTHENTICATED","error":"Authentication required"}`,
		},
		{
			name:     "no token browser",
			prepare:  func(r *http.Request) { r.Header.Set("Accept", "text/html") },
			status:   http.StatusFound,
			location: "/login?code=UNAUTHENTICATED",
		},
		{
			name:    "forged token",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") },
			status:  http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := guardedRouter(&stubAuthorizer{token: "good"})
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, w.Header().Get("Location"))
			}
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestSessionGuard_SkipsAuthorizeWithoutToken(t *testing.T) {
	auth := &stubAuthorizer{token: "good"}
	router := guardedRouter(auth)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, auth.calls)
}
