package controllers

import (
	"net/http"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/config"
	"github.com/fsdevblog/urlkeeper/internal/controllers/middlewares"
	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterParams зависимости роутера.
type RouterParams struct {
	Identity       IdentityProvider
	URLService     ShortURLStore
	ProfileService ProfileUpdater
	PingService    ConnectionChecker
	Metrics        *metrics.Metrics
	// MetricsHandler отдает метрики в формате prometheus. Если nil, /metrics не регистрируется.
	MetricsHandler http.Handler
	AppConf        config.Config
	Logger         *zap.Logger
}

// SetupRouter собирает gin.Engine со всеми маршрутами приложения.
func SetupRouter(params RouterParams) *gin.Engine {
	if params.AppConf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}

	r := gin.New()
	// Без доверенных прокси ClientIP берется из соединения, а не из X-Forwarded-For.
	if err := r.SetTrustedProxies(params.AppConf.TrustedProxies); err != nil {
		params.Logger.Error("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(gin.Recovery())
	r.Use(middlewares.MetricsMiddleware(params.Metrics))
	if len(params.AppConf.CORSAllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     params.AppConf.CORSAllowOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middlewares.GzipMiddleware())

	authController := NewAuthController(params.Identity, params.AppConf.EnableHTTPS)
	shortURLController := NewShortURLController(params.URLService, params.AppConf.BaseURL)
	profileController := NewProfileController(params.ProfileService)
	pingController := NewPingController(params.PingService)

	credentials := r.Group("/")
	if params.AppConf.LoginRateLimit > 0 {
		limiter := middlewares.NewRateLimiter(
			params.AppConf.LoginRateLimit,
			params.AppConf.LoginRateWindow,
			params.Logger,
			params.Metrics,
		)
		credentials.Use(limiter.Middleware())
	}
	credentials.POST("/register", authController.Register)
	credentials.POST("/login", authController.Login)

	r.GET("/register", authController.RegisterPage)
	r.GET("/login", authController.LoginPage)
	r.GET("/ping", pingController.Ping)
	if params.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(params.MetricsHandler))
	}

	authorized := r.Group("/", middlewares.SessionGuard(params.Identity))
	authorized.GET("/logout", authController.Logout)
	authorized.GET("/dashboard", shortURLController.Dashboard)
	authorized.POST("/shorten", shortURLController.Shorten)
	authorized.GET("/profile", profileController.Show)
	authorized.POST("/profile", profileController.Update)

	// Имена корневых маршрутов не выдаются как короткие коды, см. services.IsReservedShortCode.
	r.GET("/:code", shortURLController.Redirect)
	return r
}
