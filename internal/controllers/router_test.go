package controllers

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/urlkeeper/internal/config"
	"github.com/fsdevblog/urlkeeper/internal/controllers/mocksctrl"
	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const (
	testToken     = "valid-token"
	browserAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

type RouterSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	identity *mocksctrl.MockIdentityProvider
	urls     *mocksctrl.MockShortURLStore
	profiles *mocksctrl.MockProfileUpdater
	ping     *mocksctrl.MockConnectionChecker
	conf     config.Config
	user     *models.User
	session  *models.Session
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.identity = mocksctrl.NewMockIdentityProvider(s.ctrl)
	s.urls = mocksctrl.NewMockShortURLStore(s.ctrl)
	s.profiles = mocksctrl.NewMockProfileUpdater(s.ctrl)
	s.ping = mocksctrl.NewMockConnectionChecker(s.ctrl)
	s.conf = config.Config{
		ServerAddress:   ":80",
		BaseURL:         &url.URL{Scheme: "http", Host: "test.com:8080"},
		LoginRateLimit:  0,
		LoginRateWindow: time.Minute,
	}
	s.user = &models.User{ID: 7, Username: gofakeit.Username(), Email: gofakeit.Email()}
	s.session = &models.Session{ID: gofakeit.UUID(), UserID: s.user.ID, ExpiresAt: time.Now().Add(time.Hour)}
}

func (s *RouterSuite) router() http.Handler {
	return SetupRouter(RouterParams{
		Identity:       s.identity,
		URLService:     s.urls,
		ProfileService: s.profiles,
		PingService:    s.ping,
		Metrics:        metrics.New(prometheus.NewRegistry()),
		AppConf:        s.conf,
		Logger:         zap.NewNop(),
	})
}

type requestFields struct {
	Method      string
	URL         string
	Body        string
	ContentType string
	Browser     bool
	Token       string
	Gzip        bool
}

func (s *RouterSuite) do(r requestFields) *http.Response {
	req := httptest.NewRequest(r.Method, r.URL, strings.NewReader(r.Body))
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if r.Browser {
		req.Header.Set("Accept", browserAccept)
	}
	if r.Token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: r.Token})
	}
	if r.Gzip {
		req.Header.Set("Accept-Encoding", "gzip")
	}
	w := httptest.NewRecorder()
	s.router().ServeHTTP(w, req)
	return w.Result()
}

func (s *RouterSuite) expectAuthorized() {
	s.identity.EXPECT().Authorize(gomock.Any(), testToken).Return(s.user, s.session, nil)
}

func (s *RouterSuite) decode(res *http.Response, v any) {
	defer res.Body.Close()
	s.Require().NoError(json.NewDecoder(res.Body).Decode(v))
}

func (s *RouterSuite) TestRegister() {
	args := services.RegisterArgs{Username: "alice", Email: "a@x.com", Password: "pw1"}

	s.Run("json created", func() {
		s.identity.EXPECT().Register(gomock.Any(), args).Return(&models.User{ID: 1, Username: "alice", Email: "a@x.com"}, nil)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/register",
			Body:        `{"username":"alice","email":"a@x.com","password":"pw1"}`,
			ContentType: "application/json",
		})
		s.Equal(http.StatusCreated, res.StatusCode)
		var user models.User
		s.decode(res, &user)
		s.Equal("alice", user.Username)
	})

	s.Run("browser form redirects to login", func() {
		s.identity.EXPECT().Register(gomock.Any(), args).Return(&models.User{ID: 1}, nil)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/register",
			Body:        "username=alice&email=a%40x.com&password=pw1",
			ContentType: "application/x-www-form-urlencoded",
			Browser:     true,
		})
		defer res.Body.Close()
		s.Equal(http.StatusSeeOther, res.StatusCode)
		s.Equal("/login?message=Registration+successful%21", res.Header.Get("Location"))
	})

	s.Run("duplicate username", func() {
		s.identity.EXPECT().Register(gomock.Any(), args).Return(nil, services.ErrDuplicateUsername)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/register",
			Body:        `{"username":"alice","email":"a@x.com","password":"pw1"}`,
			ContentType: "application/json",
		})
		s.Equal(http.StatusConflict, res.StatusCode)
		var body ErrorResponse
		s.decode(res, &body)
		s.Equal(CodeDuplicateUsername, body.Code)
	})

	s.Run("duplicate email in browser", func() {
		s.identity.EXPECT().Register(gomock.Any(), args).Return(nil, services.ErrDuplicateEmail)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/register",
			Body:        "username=alice&email=a%40x.com&password=pw1",
			ContentType: "application/x-www-form-urlencoded",
			Browser:     true,
		})
		defer res.Body.Close()
		s.Equal(http.StatusSeeOther, res.StatusCode)
		s.Equal("/register?code=DUPLICATE_EMAIL", res.Header.Get("Location"))
	})

	s.Run("missing field", func() {
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/register",
			Body:        `{"username":"alice"}`,
			ContentType: "application/json",
		})
		s.Equal(http.StatusBadRequest, res.StatusCode)
		var body ErrorResponse
		s.decode(res, &body)
		s.Equal(CodeInvalidPayload, body.Code)
	})
}

func (s *RouterSuite) TestLogin() {
	s.Run("sets session cookie", func() {
		s.identity.EXPECT().Authenticate(gomock.Any(), "a@x.com", "pw1").Return(&services.AuthResult{
			User:    s.user,
			Session: s.session,
			Token:   testToken,
		}, nil)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/login",
			Body:        `{"email":"a@x.com","password":"pw1"}`,
			ContentType: "application/json",
		})
		s.Equal(http.StatusOK, res.StatusCode)

		var cookie *http.Cookie
		for _, c := range res.Cookies() {
			if c.Name == "session" {
				cookie = c
			}
		}
		s.Require().NotNil(cookie)
		s.Equal(testToken, cookie.Value)
		s.True(cookie.HttpOnly)
		s.Equal(http.SameSiteLaxMode, cookie.SameSite)

		var body LoginResponse
		s.decode(res, &body)
		s.Equal(testToken, body.Token)
		s.Equal(s.user.ID, body.User.ID)
	})

	s.Run("browser goes to dashboard", func() {
		s.identity.EXPECT().Authenticate(gomock.Any(), "a@x.com", "pw1").Return(&services.AuthResult{
			User: s.user, Session: s.session, Token: testToken,
		}, nil)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/login",
			Body:        "email=a%40x.com&password=pw1",
			ContentType: "application/x-www-form-urlencoded",
			Browser:     true,
		})
		defer res.Body.Close()
		s.Equal(http.StatusSeeOther, res.StatusCode)
		s.Equal("/dashboard?message=Login+successful%21", res.Header.Get("Location"))
	})

	s.Run("invalid credentials", func() {
		s.identity.EXPECT().Authenticate(gomock.Any(), "a@x.com", "wrong").Return(nil, services.ErrInvalidCredentials)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/login",
			Body:        `{"email":"a@x.com","password":"wrong"}`,
			ContentType: "application/json",
		})
		s.Equal(http.StatusUnauthorized, res.StatusCode)
		s.Empty(res.Cookies())
		var body ErrorResponse
		s.decode(res, &body)
		s.Equal(CodeInvalidCredentials, body.Code)
		s.Equal("Invalid email or password.", body.Error)
	})
}

func (s *RouterSuite) TestLoginPage() {
	res := s.do(requestFields{Method: http.MethodGet, URL: "/login?code=UNAUTHENTICATED"})
	s.Equal(http.StatusOK, res.StatusCode)
	var body map[string]any
	s.decode(res, &body)
	s.Equal("login", body["page"])
	s.Equal("UNAUTHENTICATED", body["code"])
}

func (s *RouterSuite) TestGuard() {
	tests := []struct {
		name     string
		method   string
		path     string
		browser  bool
		token    string
		status   int
		location string
	}{
		{name: "dashboard api", method: http.MethodGet, path: "/dashboard", status: http.StatusUnauthorized},
		{name: "dashboard browser", method: http.MethodGet, path: "/dashboard", browser: true,
			status: http.StatusFound, location: "/login?code=UNAUTHENTICATED"},
		{name: "shorten api", method: http.MethodPost, path: "/shorten", status: http.StatusUnauthorized},
		{name: "profile api", method: http.MethodGet, path: "/profile", status: http.StatusUnauthorized},
		{name: "profile update api", method: http.MethodPost, path: "/profile", status: http.StatusUnauthorized},
		{name: "logout browser", method: http.MethodGet, path: "/logout", browser: true,
			status: http.StatusFound, location: "/login?code=UNAUTHENTICATED"},
		{name: "bad token", method: http.MethodGet, path: "/dashboard", token: "forged",
			status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			if tt.token != "" {
				s.identity.EXPECT().Authorize(gomock.Any(), tt.token).Return(nil, nil, services.ErrUnauthenticated)
			}
			res := s.do(requestFields{Method: tt.method, URL: tt.path, Browser: tt.browser, Token: tt.token})
			defer res.Body.Close()
			s.Equal(tt.status, res.StatusCode)
			if tt.location != "" {
				s.Equal(tt.location, res.Header.Get("Location"))
			}
		})
	}
}

func (s *RouterSuite) TestGuard_BearerHeader() {
	s.expectAuthorized()
	s.urls.EXPECT().ListByOwner(gomock.Any(), s.user.ID).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	s.router().ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestGuard_StoreFailure() {
	s.identity.EXPECT().Authorize(gomock.Any(), testToken).Return(nil, nil, services.ErrUnknown)
	res := s.do(requestFields{Method: http.MethodGet, URL: "/dashboard", Token: testToken})
	defer res.Body.Close()
	s.Equal(http.StatusInternalServerError, res.StatusCode)
}

func (s *RouterSuite) TestShorten() {
	created := time.Now().UTC()

	s.Run("json", func() {
		s.expectAuthorized()
		s.urls.EXPECT().Shorten(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args services.ShortenArgs) (*models.URL, error) {
				s.Require().NotNil(args.OwnerID)
				s.Equal(s.user.ID, *args.OwnerID)
				s.Equal("https://example.com/very/long/path", args.OriginalURL)
				return &models.URL{
					ID: 1, ShortCode: "aB3dE9", OriginalURL: args.OriginalURL, UserID: args.OwnerID, CreatedAt: created,
				}, nil
			})
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/shorten",
			Body:        `{"url":"https://example.com/very/long/path"}`,
			ContentType: "application/json",
			Token:       testToken,
		})
		s.Equal(http.StatusCreated, res.StatusCode)
		var body ShortURLResponse
		s.decode(res, &body)
		s.Equal("http://test.com:8080/aB3dE9", body.Result)
		s.Equal("aB3dE9", body.ShortCode)
		s.Equal(int64(0), body.ClickCount)
	})

	s.Run("browser", func() {
		s.expectAuthorized()
		s.urls.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(&models.URL{ShortCode: "aB3dE9"}, nil)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/shorten",
			Body:        "url=https%3A%2F%2Fexample.com",
			ContentType: "application/x-www-form-urlencoded",
			Browser:     true,
			Token:       testToken,
		})
		defer res.Body.Close()
		s.Equal(http.StatusSeeOther, res.StatusCode)
		s.Equal("/dashboard?message=URL+shortened%21+Short+code%3A+aB3dE9", res.Header.Get("Location"))
	})

	s.Run("invalid url", func() {
		s.expectAuthorized()
		s.urls.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(nil, services.ErrInvalidURL)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/shorten",
			Body:        `{"url":"not a url"}`,
			ContentType: "application/json",
			Token:       testToken,
		})
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
		var body ErrorResponse
		s.decode(res, &body)
		s.Equal(CodeInvalidURL, body.Code)
	})

	s.Run("collisions exhausted", func() {
		s.expectAuthorized()
		s.urls.EXPECT().Shorten(gomock.Any(), gomock.Any()).Return(nil, services.ErrPersistenceConflict)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/shorten",
			Body:        `{"url":"https://example.com"}`,
			ContentType: "application/json",
			Token:       testToken,
		})
		defer res.Body.Close()
		s.Equal(http.StatusServiceUnavailable, res.StatusCode)
	})
}

func (s *RouterSuite) TestDashboard() {
	s.expectAuthorized()
	s.urls.EXPECT().ListByOwner(gomock.Any(), s.user.ID).Return([]models.URL{
		{ID: 2, ShortCode: "bbbbbb", OriginalURL: "https://b.example.com", ClickCount: 3},
		{ID: 1, ShortCode: "aaaaaa", OriginalURL: "https://a.example.com"},
	}, nil)

	res := s.do(requestFields{Method: http.MethodGet, URL: "/dashboard", Token: testToken})
	s.Equal(http.StatusOK, res.StatusCode)
	var body DashboardResponse
	s.decode(res, &body)
	s.Equal(s.user.Username, body.User.Username)
	s.Require().Len(body.URLs, 2)
	s.Equal("http://test.com:8080/bbbbbb", body.URLs[0].Result)
	s.Equal(int64(3), body.URLs[0].ClickCount)
}

func (s *RouterSuite) TestRedirect() {
	s.Run("found", func() {
		s.urls.EXPECT().Resolve(gomock.Any(), "aB3dE9").
			Return(&models.URL{ShortCode: "aB3dE9", OriginalURL: "https://example.com/very/long/path", ClickCount: 1}, nil)
		res := s.do(requestFields{Method: http.MethodGet, URL: "/aB3dE9"})
		defer res.Body.Close()
		s.Equal(http.StatusTemporaryRedirect, res.StatusCode)
		s.Equal("https://example.com/very/long/path", res.Header.Get("Location"))
	})

	s.Run("not found", func() {
		s.urls.EXPECT().Resolve(gomock.Any(), "zzzzzz").Return(nil, services.ErrRecordNotFound)
		res := s.do(requestFields{Method: http.MethodGet, URL: "/zzzzzz"})
		s.Equal(http.StatusNotFound, res.StatusCode)
		var body ErrorResponse
		s.decode(res, &body)
		s.Equal(CodeNotFound, body.Code)
	})
}

func (s *RouterSuite) TestProfile() {
	s.Run("show", func() {
		s.expectAuthorized()
		res := s.do(requestFields{Method: http.MethodGet, URL: "/profile", Token: testToken})
		s.Equal(http.StatusOK, res.StatusCode)
		var user models.User
		s.decode(res, &user)
		s.Equal(s.user.Email, user.Email)
	})

	s.Run("update", func() {
		s.expectAuthorized()
		s.profiles.EXPECT().
			UpdateProfile(gomock.Any(), s.user.ID, services.UpdateProfileArgs{Username: "alice2", Email: "a2@x.com"}).
			Return(&models.User{ID: s.user.ID, Username: "alice2", Email: "a2@x.com"}, nil)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/profile",
			Body:        "username=alice2&email=a2%40x.com",
			ContentType: "application/x-www-form-urlencoded",
			Token:       testToken,
		})
		s.Equal(http.StatusOK, res.StatusCode)
		var user models.User
		s.decode(res, &user)
		s.Equal("alice2", user.Username)
	})

	s.Run("email taken", func() {
		s.expectAuthorized()
		s.profiles.EXPECT().UpdateProfile(gomock.Any(), s.user.ID, gomock.Any()).Return(nil, services.ErrDuplicateEmail)
		res := s.do(requestFields{
			Method:      http.MethodPost,
			URL:         "/profile",
			Body:        "username=alice&email=b%40x.com",
			ContentType: "application/x-www-form-urlencoded",
			Browser:     true,
			Token:       testToken,
		})
		defer res.Body.Close()
		s.Equal(http.StatusSeeOther, res.StatusCode)
		s.Equal("/profile?code=DUPLICATE_EMAIL", res.Header.Get("Location"))
	})
}

func (s *RouterSuite) TestLogout() {
	s.expectAuthorized()
	s.identity.EXPECT().Logout(gomock.Any(), s.session.ID).Return(nil)

	res := s.do(requestFields{Method: http.MethodGet, URL: "/logout", Token: testToken, Browser: true})
	defer res.Body.Close()
	s.Equal(http.StatusSeeOther, res.StatusCode)
	s.Equal("/login?message=Logged+out+successfully%21", res.Header.Get("Location"))

	var cleared bool
	for _, c := range res.Cookies() {
		if c.Name == "session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	s.True(cleared)
}

func (s *RouterSuite) TestPing() {
	s.Run("ok", func() {
		s.ping.EXPECT().CheckConnection(gomock.Any()).Return(nil)
		res := s.do(requestFields{Method: http.MethodGet, URL: "/ping"})
		defer res.Body.Close()
		s.Equal(http.StatusOK, res.StatusCode)
		body, _ := io.ReadAll(res.Body)
		s.Equal("pong", string(body))
	})
	s.Run("storage down", func() {
		s.ping.EXPECT().CheckConnection(gomock.Any()).Return(errors.New("connection refused"))
		res := s.do(requestFields{Method: http.MethodGet, URL: "/ping"})
		defer res.Body.Close()
		s.Equal(http.StatusServiceUnavailable, res.StatusCode)
	})
}

func (s *RouterSuite) TestLoginRateLimit() {
	s.conf.LoginRateLimit = 2
	router := s.router()
	s.identity.EXPECT().Authenticate(gomock.Any(), "a@x.com", "wrong").
		Return(nil, services.ErrInvalidCredentials).Times(2)

	statuses := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}
	s.Equal([]int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, statuses)
}

// loginStatuses отправляет n неудачных входов с разными X-Forwarded-For с одного адреса соединения.
func (s *RouterSuite) loginStatuses(n int) []int {
	router := s.router()
	statuses := make([]int, 0, n)
	for i := range n {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"wrong"}`))
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}
	return statuses
}

func (s *RouterSuite) TestLoginRateLimit_IgnoresForwardedForFromUntrustedPeer() {
	s.conf.LoginRateLimit = 2
	s.identity.EXPECT().Authenticate(gomock.Any(), "a@x.com", "wrong").
		Return(nil, services.ErrInvalidCredentials).Times(2)

	statuses := s.loginStatuses(10)
	limited := 0
	for _, status := range statuses {
		if status == http.StatusTooManyRequests {
			limited++
		}
	}
	s.Equal(8, limited, "statuses: %v", statuses)
}

func (s *RouterSuite) TestLoginRateLimit_TrustedProxyForwardsClientIP() {
	s.conf.LoginRateLimit = 2
	s.conf.TrustedProxies = []string{"192.0.2.1"}
	s.identity.EXPECT().Authenticate(gomock.Any(), "a@x.com", "wrong").
		Return(nil, services.ErrInvalidCredentials).Times(5)

	for _, status := range s.loginStatuses(5) {
		s.Equal(http.StatusUnauthorized, status)
	}
}

func (s *RouterSuite) TestGzipResponse() {
	s.expectAuthorized()
	res := s.do(requestFields{Method: http.MethodGet, URL: "/profile", Token: testToken, Gzip: true})
	defer res.Body.Close()
	s.Equal(http.StatusOK, res.StatusCode)
	s.Equal("gzip", res.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(res.Body)
	s.Require().NoError(err)
	raw, err := io.ReadAll(zr)
	s.Require().NoError(err)
	var user models.User
	s.Require().NoError(json.NewDecoder(bytes.NewReader(raw)).Decode(&user))
	s.Equal(s.user.ID, user.ID)
}
