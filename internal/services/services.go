package services

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/urlkeeper/internal/db"
	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/fsdevblog/urlkeeper/internal/repositories/memstore"
	"github.com/fsdevblog/urlkeeper/internal/repositories/redisstore"
	"github.com/fsdevblog/urlkeeper/internal/repositories/sql"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Identity *IdentityService
	URLs     *URLService
	Profile  *ProfileService
	Ping     *PingService
}

// FactoryParams зависимости для сборки сервисов.
type FactoryParams struct {
	Conn *db.Connection
	// Redis если задан, сессии хранятся в redis, иначе в основном хранилище.
	Redis    *redis.Client
	Identity IdentityOptions
	Metrics  *metrics.Metrics
	// Generator генератор коротких кодов. По умолчанию RandomCodeGenerator.
	Generator CodeGenerator
	Logger    *logrus.Logger
}

type repos struct {
	users    UserRepository
	urls     URLRepository
	sessions SessionRepository
	pingers  []Pinger
}

// Factory собирает сервисы поверх хранилища, открытого db.NewConnectionFactory.
func Factory(params FactoryParams) (*Services, error) {
	if params.Conn == nil {
		return nil, errors.New("connection is nil")
	}
	if params.Logger == nil {
		params.Logger = logrus.New()
	}

	var r repos
	switch {
	case params.Conn.SQL != nil:
		r = repos{
			users:    sql.NewUserRepo(params.Conn.SQL, params.Logger),
			urls:     sql.NewURLRepo(params.Conn.SQL, params.Logger),
			sessions: sql.NewSessionRepo(params.Conn.SQL, params.Logger),
			pingers:  []Pinger{db.GormPinger{DB: params.Conn.SQL}},
		}
	case params.Conn.Memory != nil:
		r = repos{
			users:    memstore.NewUserRepo(params.Conn.Memory),
			urls:     memstore.NewURLRepo(params.Conn.Memory),
			sessions: memstore.NewSessionRepo(params.Conn.Memory),
			pingers:  []Pinger{db.NopPinger{}},
		}
	default:
		return nil, errors.New("connection has no storage")
	}

	if params.Redis != nil {
		r.sessions = redisstore.NewSessionRepo(params.Redis, params.Logger)
		r.pingers = append(r.pingers, db.RedisPinger{Client: params.Redis})
	}

	generator := params.Generator
	if generator == nil {
		generator = NewRandomCodeGenerator()
	}

	params.Identity.Metrics = params.Metrics
	identity, err := NewIdentityService(r.users, r.sessions, params.Identity, params.Logger)
	if err != nil {
		return nil, fmt.Errorf("identity service: %w", err)
	}

	return &Services{
		Identity: identity,
		URLs:     NewURLService(r.urls, generator, params.Metrics, params.Logger),
		Profile:  NewProfileService(r.users),
		Ping:     NewPingService(r.pingers...),
	}, nil
}
