package services

import (
	"context"

	"github.com/fsdevblog/urlkeeper/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock.go -package=mocks

// UserRepository описывает репозиторий пользователей.
// Нарушение уникальности имени или почты возвращается как repositories.ErrDuplicateKey.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile меняет имя и почту пользователя id.
	UpdateProfile(ctx context.Context, id uint, username, email string) (*models.User, error)
}

// URLRepository описывает репозиторий для URL.
type URLRepository interface {
	// Create создает запись. Занятый короткий код возвращает repositories.ErrDuplicateKey.
	Create(ctx context.Context, mURL *models.URL) (*models.URL, error)
	// GetByShortCode находит в хранилище запись по короткому коду
	GetByShortCode(ctx context.Context, code string) (*models.URL, error)
	// IncrementClicks атомарно увеличивает счетчик переходов и возвращает обновленную запись.
	IncrementClicks(ctx context.Context, code string) (*models.URL, error)
	// ListByUserID возвращает ссылки владельца, новые первыми.
	ListByUserID(ctx context.Context, userID uint) ([]models.URL, error)
}

// SessionRepository описывает хранилище сессий.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete удаляет сессию, отсутствие сессии ошибкой не считается.
	Delete(ctx context.Context, id string) error
}

// CodeGenerator выдает кандидата в короткие коды. Уникальность проверяет хранилище.
type CodeGenerator interface {
	Generate() (string, error)
}
