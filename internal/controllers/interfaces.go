package controllers

import (
	"context"

	"github.com/fsdevblog/urlkeeper/internal/controllers/middlewares"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/services"
)

//go:generate mockgen -source=interfaces.go -destination=mocksctrl/mock.go -package=mocksctrl

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// Authenticator регистрация, вход и выход пользователя.
type Authenticator interface {
	Register(ctx context.Context, args services.RegisterArgs) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*services.AuthResult, error)
	// Logout удаляет сессию sessionID. Повторный выход не ошибка.
	Logout(ctx context.Context, sessionID string) error
}

// IdentityProvider всё, что роутеру нужно от сервиса учетных записей.
type IdentityProvider interface {
	Authenticator
	middlewares.Authorizer
}

type ShortURLStore interface {
	// Shorten создает новую короткую ссылку, даже если такой URL уже сокращался.
	Shorten(ctx context.Context, args services.ShortenArgs) (*models.URL, error)
	// Resolve возвращает ссылку по коду и засчитывает переход.
	Resolve(ctx context.Context, code string) (*models.URL, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.URL, error)
}

type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, userID uint, args services.UpdateProfileArgs) (*models.User, error)
}
