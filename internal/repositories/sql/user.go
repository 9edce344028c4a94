package sql

import (
	"context"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UserRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewUserRepo(db *gorm.DB, logger *logrus.Logger) *UserRepo {
	return &UserRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/user"),
	}
}

// Create вставляет пользователя. Нарушение уникальности имени или почты
// возвращает repositories.ErrDuplicateKey.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		err = convertErrorType(err)
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			r.logger.WithError(err).Errorf("failed to create user %s", user.Username)
		}
		return nil, errors.Wrapf(err, "failed to create user %s", user.Username)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// UpdateProfile меняет имя и почту пользователя.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint, username, email string) (*models.User, error) {
	var user models.User
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return err //nolint:wrapcheck
		}
		user.Username = username
		user.Email = email
		return tx.Model(&user).Select("username", "email", "updated_at").Updates(&user).Error //nolint:wrapcheck
	})
	if txErr != nil {
		err := convertErrorType(txErr)
		if errors.Is(err, repositories.ErrUnknown) {
			r.logger.WithError(txErr).Errorf("failed to update user %d", id)
		}
		return nil, errors.Wrapf(err, "failed to update user %d", id)
	}
	return &user, nil
}

func (r *UserRepo) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		err = convertErrorType(err)
		if errors.Is(err, repositories.ErrUnknown) {
			r.logger.WithError(err).Errorf("failed to get user by `%s` %v", query, arg)
		}
		return nil, errors.Wrapf(err, "failed to get user by `%s`", query)
	}
	return &user, nil
}
