package memstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/db"
	"github.com/fsdevblog/urlkeeper/internal/db/memory"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/repositories"
)

// userRecord форма хранения пользователя. В отличие от models.User хеш пароля сериализуется.
type userRecord struct {
	ID           uint      `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
}

func newUserRecord(u *models.User) *userRecord {
	return &userRecord{
		ID:           u.ID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}
}

func (r *userRecord) model() *models.User {
	return &models.User{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
	}
}

// UserRepo репозиторий пользователей в памяти. Ключ хранилища - ID пользователя.
type UserRepo struct {
	s      *memory.MStorage
	mu     sync.Mutex
	lastID uint
}

func NewUserRepo(store *db.MemoryStorage) *UserRepo {
	return &UserRepo{
		s: store.Users,
	}
}

// Create вставляет пользователя, проверяя уникальность имени и почты под мьютексом.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(ctx, 0, user.Username, user.Email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.lastID++
	record := newUserRecord(user)
	record.ID = r.lastID
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := memory.Set(ctx, key(record.ID), record, r.s); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", user.Username, convertErrorType(err))
	}
	*user = *record.model()
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	record, err := memory.Get[userRecord](ctx, key(id), r.s)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, convertErrorType(err))
	}
	return record.model(), nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, func(val userRecord) bool { return val.Username == username })
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, func(val userRecord) bool { return val.Email == email })
}

// UpdateProfile меняет имя и почту пользователя.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint, username, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := memory.Get[userRecord](ctx, key(id), r.s); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, convertErrorType(err))
	}
	if err := r.checkUnique(ctx, id, username, email); err != nil {
		return nil, err
	}

	record, err := memory.Update[userRecord](ctx, key(id), r.s, func(val *userRecord) error {
		val.Username = username
		val.Email = email
		val.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, convertErrorType(err))
	}
	return record.model(), nil
}

// checkUnique вызывается под r.mu. Пользователь exceptID в проверке не участвует.
func (r *UserRepo) checkUnique(ctx context.Context, exceptID uint, username, email string) error {
	taken, err := memory.FilterAll[userRecord](ctx, r.s, func(val userRecord) bool {
		return val.ID != exceptID && (val.Username == username || val.Email == email)
	})
	if err != nil {
		return fmt.Errorf("failed to check user uniqueness: %w", convertErrorType(err))
	}
	if len(taken) > 0 {
		return fmt.Errorf("%w: username or email already taken", repositories.ErrDuplicateKey)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, fn func(val userRecord) bool) (*models.User, error) {
	data, err := memory.FilterAll[userRecord](ctx, r.s, fn)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", convertErrorType(err))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to find user: %w", repositories.ErrNotFound)
	}
	return data[0].model(), nil
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
