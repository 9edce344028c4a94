package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/config"
	"github.com/fsdevblog/urlkeeper/internal/controllers"
	"github.com/fsdevblog/urlkeeper/internal/db"
	"github.com/fsdevblog/urlkeeper/internal/logs"
	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/fsdevblog/urlkeeper/internal/services"
	"github.com/fsdevblog/urlkeeper/internal/services/svccert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	config   config.Config
	conn     *db.Connection
	redis    *redis.Client
	services *services.Services
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	Logger   *zap.Logger
}

// New открывает хранилища и собирает сервисный слой приложения.
func New(conf config.Config) (*App, error) {
	logger, err := logs.New(logs.WithRelease(conf.Release), logs.WithLevel(conf.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if conf.Logger == nil {
		conf.Logger = logrus.New()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	conn, err := db.NewConnectionFactory(ctx, db.FactoryConfig{
		StorageType:  db.StorageType(conf.DBType),
		PostgresDSN:  &conf.DatabaseDSN,
		SqliteDBPath: &conf.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	var redisClient *redis.Client
	if conf.SessionStore == config.SessionStoreRedis {
		redisClient, err = db.NewRedis(ctx, db.RedisConfig{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("init session store: %w", err)
		}
	}

	appServices, err := services.Factory(services.FactoryParams{
		Conn:  conn,
		Redis: redisClient,
		Identity: services.IdentityOptions{
			SessionSecret: []byte(conf.SessionSecret),
			SessionTTL:    conf.SessionTTL,
			BcryptCost:    conf.BcryptCost,
		},
		Metrics: m,
		Logger:  conf.Logger,
	})
	if err != nil {
		_ = conn.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("init services: %w", err)
	}

	return &App{
		config:   conf,
		conn:     conn,
		redis:    redisClient,
		services: appServices,
		metrics:  m,
		registry: registry,
		Logger:   logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Handler возвращает http обработчик со всеми маршрутами приложения.
func (a *App) Handler() http.Handler {
	// ответ /metrics сжимает GzipMiddleware
	metricsHandler := promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{DisableCompression: true})

	return controllers.SetupRouter(controllers.RouterParams{
		Identity:       a.services.Identity,
		URLService:     a.services.URLs,
		ProfileService: a.services.Profile,
		PingService:    a.services.Ping,
		Metrics:        a.metrics,
		MetricsHandler: metricsHandler,
		AppConf:        a.config,
		Logger:         a.Logger,
	})
}

// Run запускает web сервер и блокируется до SIGINT/SIGTERM или ошибки сервера.
// После остановки сервера закрывает хранилища.
func (a *App) Run() error {
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.listen(server)
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		if errors.Is(serverErr, http.ErrServerClosed) {
			serverErr = nil
		}
		if serverErr != nil {
			a.Logger.Error("server error", zap.Error(serverErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown error", zap.Error(err))
	}
	return serverErr
}

func (a *App) listen(server *http.Server) error {
	if !a.config.EnableHTTPS {
		a.Logger.Info("Starting server", zap.String("addr", server.Addr))
		return server.ListenAndServe() //nolint:wrapcheck
	}

	cert := svccert.New(func(o *svccert.Options) {
		o.CertFilePath = a.config.TLSCertFile
		o.KeyFilePath = a.config.TLSKeyFile
	})
	generated, err := cert.GenerateAndSaveIfNeed()
	if err != nil {
		return fmt.Errorf("prepare tls certificate: %w", err)
	}
	if generated {
		a.Logger.Warn("Generated self-signed certificate", zap.String("cert", a.config.TLSCertFile))
	}

	certFile, keyFile := cert.Paths()
	a.Logger.Info("Starting HTTPS server", zap.String("addr", server.Addr))
	return server.ListenAndServeTLS(certFile, keyFile) //nolint:wrapcheck
}

// Close закрывает соединения с хранилищами.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Error("close redis", zap.Error(err))
		}
	}
	if err := a.conn.Close(); err != nil {
		a.Logger.Error("close storage", zap.Error(err))
	}
	_ = a.Logger.Sync()
}
