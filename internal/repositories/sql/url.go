package sql

import (
	"context"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type URLRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewURLRepo(db *gorm.DB, logger *logrus.Logger) *URLRepo {
	return &URLRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/url"),
	}
}

// Create вставляет новую ссылку. Занятый короткий код возвращает repositories.ErrDuplicateKey.
func (u *URLRepo) Create(ctx context.Context, sURL *models.URL) (*models.URL, error) {
	if err := u.db.WithContext(ctx).Create(sURL).Error; err != nil {
		err = convertErrorType(err)
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			u.logger.WithError(err).Errorf("failed to create record with code %s", sURL.ShortCode)
		}
		return nil, errors.Wrapf(err, "failed to create record with code %s", sURL.ShortCode)
	}
	return sURL, nil
}

func (u *URLRepo) GetByShortCode(ctx context.Context, code string) (*models.URL, error) {
	var url models.URL
	if err := u.db.WithContext(ctx).Where("short_code = ?", code).First(&url).Error; err != nil {
		return nil, errors.Wrapf(convertErrorType(err), "failed to get record by short code %s", code)
	}
	return &url, nil
}

// IncrementClicks атомарно увеличивает счетчик переходов и возвращает обновленную запись.
// Инкремент выполняется одним UPDATE, поэтому параллельные переходы не теряются.
func (u *URLRepo) IncrementClicks(ctx context.Context, code string) (*models.URL, error) {
	var url models.URL
	txErr := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.URL{}).
			Where("short_code = ?", code).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
		if res.Error != nil {
			return res.Error //nolint:wrapcheck
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("short_code = ?", code).First(&url).Error //nolint:wrapcheck
	})
	if txErr != nil {
		err := convertErrorType(txErr)
		if !errors.Is(err, repositories.ErrNotFound) {
			u.logger.WithError(txErr).Errorf("failed to increment clicks for code %s", code)
		}
		return nil, errors.Wrapf(err, "failed to increment clicks for code %s", code)
	}
	return &url, nil
}

// ListByUserID возвращает ссылки пользователя, новые первыми.
func (u *URLRepo) ListByUserID(ctx context.Context, userID uint) ([]models.URL, error) {
	var urls []models.URL
	err := u.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&urls).Error
	if err != nil {
		u.logger.WithError(err).Errorf("failed to list records for user %d", userID)
		return nil, errors.Wrapf(convertErrorType(err), "failed to list records for user %d", userID)
	}
	return urls, nil
}
