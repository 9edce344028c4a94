package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/controllers/middlewares"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/services"

	"github.com/gin-gonic/gin"
)

// ShortenRequest тело запроса на сокращение ссылки.
type ShortenRequest struct {
	URL string `form:"url" json:"url"`
}

// ShortURLResponse сокращенная ссылка в ответах API.
type ShortURLResponse struct {
	Result      string    `json:"result"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardResponse текущий пользователь и его ссылки, новые первыми.
type DashboardResponse struct {
	User *models.User       `json:"user"`
	URLs []ShortURLResponse `json:"urls"`
}

type ShortURLController struct {
	urlService ShortURLStore
	baseURL    *url.URL
}

func NewShortURLController(urlService ShortURLStore, baseURL *url.URL) *ShortURLController {
	return &ShortURLController{
		urlService: urlService,
		baseURL:    baseURL,
	}
}

// Redirect GET /:code. Засчитывает переход и отвечает 307 на исходный URL.
func (s *ShortURLController) Redirect(ctx *gin.Context) {
	sURL, err := s.urlService.Resolve(ctx, ctx.Param("code"))
	if err != nil {
		respondError(ctx, err, "")
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, sURL.OriginalURL)
}

// Shorten POST /shorten. Владельцем ссылки становится текущий пользователь.
func (s *ShortURLController) Shorten(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		respondError(ctx, services.ErrUnauthenticated, middlewares.LoginPath)
		return
	}

	var req ShortenRequest
	if err := bindRequest(ctx, &req); err != nil {
		respondError(ctx, err, "/dashboard")
		return
	}

	sURL, err := s.urlService.Shorten(ctx, services.ShortenArgs{
		OriginalURL: req.URL,
		OwnerID:     &user.ID,
	})
	if err != nil {
		respondError(ctx, err, "/dashboard")
		return
	}

	respondSuccess(ctx, http.StatusCreated, s.toResponse(ctx.Request, sURL),
		"/dashboard", fmt.Sprintf("URL shortened! Short code: %s", sURL.ShortCode))
}

// Dashboard GET /dashboard. Ссылки получаются явным запросом по владельцу.
func (s *ShortURLController) Dashboard(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		respondError(ctx, services.ErrUnauthenticated, middlewares.LoginPath)
		return
	}

	urls, err := s.urlService.ListByOwner(ctx, user.ID)
	if err != nil {
		respondError(ctx, err, "")
		return
	}

	resp := DashboardResponse{User: user, URLs: make([]ShortURLResponse, 0, len(urls))}
	for i := range urls {
		resp.URLs = append(resp.URLs, s.toResponse(ctx.Request, &urls[i]))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (s *ShortURLController) toResponse(r *http.Request, sURL *models.URL) ShortURLResponse {
	return ShortURLResponse{
		Result:      s.getShortURL(r, sURL.ShortCode),
		ShortCode:   sURL.ShortCode,
		OriginalURL: sURL.OriginalURL,
		ClickCount:  sURL.ClickCount,
		CreatedAt:   sURL.CreatedAt,
	}
}

// getShortURL вспомогательный метод который создает короткую ссылку.
func (s *ShortURLController) getShortURL(r *http.Request, code string) string {
	var scheme = "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if s.baseURL == nil {
		return fmt.Sprintf("%s://%s/%s", scheme, r.Host, code)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, code)
}
