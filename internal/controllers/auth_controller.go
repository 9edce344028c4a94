package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/controllers/middlewares"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/services"
	"github.com/gin-gonic/gin"
)

// RegisterRequest данные формы регистрации. Принимается JSON или форма.
type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email"    json:"email"    binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// LoginRequest данные формы входа.
type LoginRequest struct {
	Email    string `form:"email"    json:"email"    binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// LoginResponse ответ на успешный вход. Токен дублирует cookie для API клиентов.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// MessageResponse ответ с сообщением для пользователя.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthController регистрация, вход и выход.
type AuthController struct {
	identity     Authenticator
	secureCookie bool
}

// NewAuthController создает контроллер.
//
// Параметры:
//   - identity: сервис учетных записей
//   - secureCookie: выставлять ли cookie сессии флаг Secure (включается вместе с HTTPS)
func NewAuthController(identity Authenticator, secureCookie bool) *AuthController {
	return &AuthController{identity: identity, secureCookie: secureCookie}
}

// RegisterPage GET /register. HTML шаблонов нет, отдается описание формы и
// код ошибки или сообщение из query после редиректа.
func (a *AuthController) RegisterPage(ctx *gin.Context) {
	landingPage(ctx, "register", "username", "email", "password")
}

// LoginPage GET /login.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	landingPage(ctx, "login", "email", "password")
}

// Register POST /register.
//
// В случае успеха: 201 с пользователем, браузер 303 на /login.
// Занятое имя или почта: 409, некорректные данные: 400.
func (a *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := bindRequest(ctx, &req); err != nil {
		respondError(ctx, err, "/register")
		return
	}

	user, err := a.identity.Register(ctx, services.RegisterArgs{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(ctx, err, "/register")
		return
	}

	respondSuccess(ctx, http.StatusCreated, user, middlewares.LoginPath, "Registration successful!")
}

// Login POST /login. Открывает сессию и выставляет cookie session.
// Неизвестная почта и неверный пароль дают одинаковый ответ 401.
func (a *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := bindRequest(ctx, &req); err != nil {
		respondError(ctx, err, middlewares.LoginPath)
		return
	}

	res, err := a.identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(ctx, err, middlewares.LoginPath)
		return
	}

	maxAge := int(time.Until(res.Session.ExpiresAt).Seconds())
	a.setSessionCookie(ctx, res.Token, maxAge)

	respondSuccess(ctx, http.StatusOK, LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.Session.ExpiresAt,
		User:      res.User,
	}, "/dashboard", "Login successful!")
}

// Logout GET /logout. Работает только за SessionGuard.
func (a *AuthController) Logout(ctx *gin.Context) {
	session, ok := middlewares.CurrentSession(ctx)
	if !ok {
		respondError(ctx, services.ErrUnauthenticated, middlewares.LoginPath)
		return
	}

	if err := a.identity.Logout(ctx, session.ID); err != nil {
		respondError(ctx, fmt.Errorf("logout: %w", err), "/dashboard")
		return
	}

	a.setSessionCookie(ctx, "", -1)
	respondSuccess(ctx, http.StatusOK, MessageResponse{Message: "Logged out successfully!"},
		middlewares.LoginPath, "Logged out successfully!")
}

func (a *AuthController) setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.SessionCookieName, value, maxAge, "/", "", a.secureCookie, true)
}

func landingPage(ctx *gin.Context, page string, fields ...string) {
	body := gin.H{"page": page, "fields": fields}
	if code := ctx.Query("code"); code != "" {
		body["code"] = code
	}
	if message := ctx.Query("message"); message != "" {
		body["message"] = message
	}
	ctx.JSON(http.StatusOK, body)
}
