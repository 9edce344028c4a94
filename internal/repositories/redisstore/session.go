// Package redisstore хранит сессии в redis под ключами `session:<id>` с TTL,
// равным оставшемуся сроку жизни сессии.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/repositories"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "session:"

type SessionRepo struct {
	client *redis.Client
	logger *logrus.Entry
	now    func() time.Time
}

func NewSessionRepo(client *redis.Client, logger *logrus.Logger) *SessionRepo {
	return &SessionRepo{
		client: client,
		logger: logger.WithField("module", "repository/redis/session"),
		now:    time.Now,
	}
}

// Create сохраняет сессию через SETNX. Уже занятый идентификатор возвращает repositories.ErrDuplicateKey.
func (r *SessionRepo) Create(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: session already expired", repositories.ErrUnknown)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now().UTC()
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%w: marshal session: %s", repositories.ErrUnknown, err.Error())
	}

	ok, err := r.client.SetNX(ctx, keyPrefix+session.ID, payload, ttl).Result()
	if err != nil {
		r.logger.WithError(err).Errorf("failed to create session for user %d", session.UserID)
		return convertErrorType(err)
	}
	if !ok {
		return fmt.Errorf("%w: session id already exists", repositories.ErrDuplicateKey)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	payload, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		return nil, convertErrorType(err)
	}
	var session models.Session
	if err = json.Unmarshal(payload, &session); err != nil {
		r.logger.WithError(err).Error("failed to decode session payload")
		return nil, fmt.Errorf("%w: unmarshal session: %s", repositories.ErrUnknown, err.Error())
	}
	return &session, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		r.logger.WithError(err).Error("failed to delete session")
		return convertErrorType(err)
	}
	return nil
}

func convertErrorType(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %s", repositories.ErrNotFound, err.Error())
	}
	return fmt.Errorf("%w: %s", repositories.ErrUnknown, err.Error())
}
