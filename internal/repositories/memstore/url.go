package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/db"
	"github.com/fsdevblog/urlkeeper/internal/db/memory"
	"github.com/fsdevblog/urlkeeper/internal/models"
)

// URLRepo представляет собой репозиторий для работы с URL в памяти.
// Ключом хранилища служит короткий код, поэтому его уникальность обеспечивает memory.Set.
type URLRepo struct {
	s      *memory.MStorage
	lastID atomic.Uint64
}

// NewURLRepo создает новый экземпляр репозитория URL.
//
// Параметры:
//   - store: экземпляр хранилища в памяти
//
// Возвращает:
//   - *URLRepo: инициализированный репозиторий
func NewURLRepo(store *db.MemoryStorage) *URLRepo {
	return &URLRepo{
		s: store.URLs,
	}
}

// Create создает новую URL запись.
//
// Параметры:
//   - ctx: контекст выполнения
//   - sURL: данные URL для создания
//
// Возвращает:
//   - *models.URL: созданная запись с заполненными ID и CreatedAt
//   - error: ошибка создания (repositories.ErrDuplicateKey, если код занят)
func (u *URLRepo) Create(ctx context.Context, sURL *models.URL) (*models.URL, error) {
	record := *sURL
	record.ID = uint(u.lastID.Add(1))
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := memory.Set[models.URL](ctx, record.ShortCode, &record, u.s); err != nil {
		return nil, fmt.Errorf("failed to create record with code %s: %w", record.ShortCode, convertErrorType(err))
	}
	*sURL = record
	return sURL, nil
}

// GetByShortCode получает URL по короткому коду.
func (u *URLRepo) GetByShortCode(ctx context.Context, code string) (*models.URL, error) {
	url, err := memory.Get[models.URL](ctx, code, u.s)
	if err != nil {
		return nil, fmt.Errorf("failed to get record by short code %s: %w", code, convertErrorType(err))
	}
	return url, nil
}

// IncrementClicks увеличивает счетчик переходов под блокировкой хранилища.
func (u *URLRepo) IncrementClicks(ctx context.Context, code string) (*models.URL, error) {
	url, err := memory.Update[models.URL](ctx, code, u.s, func(val *models.URL) error {
		val.ClickCount++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment clicks for code %s: %w", code, convertErrorType(err))
	}
	return url, nil
}

// ListByUserID получает все ссылки пользователя, новые первыми.
//
// Параметры:
//   - ctx: контекст выполнения
//   - userID: идентификатор владельца
//
// Возвращает:
//   - []models.URL: найденные записи
//   - error: ошибка поиска (преобразованная через convertErrorType)
func (u *URLRepo) ListByUserID(ctx context.Context, userID uint) ([]models.URL, error) {
	data, err := memory.FilterAll[models.URL](ctx, u.s, func(val models.URL) bool {
		return val.UserID != nil && *val.UserID == userID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records for user %d: %w", userID, convertErrorType(err))
	}
	sort.Slice(data, func(i, j int) bool {
		if !data[i].CreatedAt.Equal(data[j].CreatedAt) {
			return data[i].CreatedAt.After(data[j].CreatedAt)
		}
		return data[i].ID > data[j].ID
	})
	return data, nil
}
