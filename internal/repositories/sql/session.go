package sql

import (
	"context"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SessionRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewSessionRepo(db *gorm.DB, logger *logrus.Logger) *SessionRepo {
	return &SessionRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/session"),
	}
}

func (r *SessionRepo) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		r.logger.WithError(err).Errorf("failed to create session for user %d", session.UserID)
		return errors.Wrap(convertErrorType(err), "failed to create session")
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, errors.Wrap(convertErrorType(err), "failed to get session")
	}
	return &session, nil
}

// Delete удаляет сессию. Отсутствующая сессия ошибкой не считается.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		r.logger.WithError(err).Error("failed to delete session")
		return errors.Wrap(convertErrorType(err), "failed to delete session")
	}
	return nil
}
