package services

import (
	"context"
	"strings"
	"time"

	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/repositories"
	"github.com/fsdevblog/urlkeeper/internal/tokens"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	MaxUsernameLength = 50
	MaxEmailLength    = 120
	// MaxPasswordBytes ограничение bcrypt на длину пароля.
	MaxPasswordBytes = 72
)

// RegisterArgs данные для регистрации пользователя.
type RegisterArgs struct {
	Username string
	Email    string
	Password string
}

// AuthResult результат успешного входа: пользователь, созданная сессия и подписанный токен сессии.
type AuthResult struct {
	User    *models.User
	Session *models.Session
	Token   string
}

// IdentityOptions параметры IdentityService.
type IdentityOptions struct {
	SessionSecret []byte
	SessionTTL    time.Duration
	BcryptCost    int
	Metrics       *metrics.Metrics
}

// IdentityService регистрирует пользователей, проверяет учетные данные и управляет сессиями.
type IdentityService struct {
	users     UserRepository
	sessions  SessionRepository
	opts      IdentityOptions
	dummyHash []byte
	now       func() time.Time
	logger    *logrus.Entry
}

// NewIdentityService создает сервис.
//
// Параметры:
//   - users: репозиторий пользователей
//   - sessions: хранилище сессий
//   - opts: секрет подписи токенов, время жизни сессии, стоимость bcrypt, метрики
//   - logger: логгер
//
// Возвращает:
//   - *IdentityService: сервис
//   - error: ошибка, если стоимость bcrypt вне допустимого диапазона
func NewIdentityService(
	users UserRepository,
	sessions SessionRepository,
	opts IdentityOptions,
	logger *logrus.Logger,
) (*IdentityService, error) {
	// Хеш для сравнения при неизвестной почте, чтобы время ответа не выдавало существование аккаунта.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), opts.BcryptCost)
	if err != nil {
		return nil, errors.Wrapf(err, "bcrypt cost %d", opts.BcryptCost)
	}
	return &IdentityService{
		users:     users,
		sessions:  sessions,
		opts:      opts,
		dummyHash: dummyHash,
		now:       time.Now,
		logger:    logger.WithField("module", "service/identity"),
	}, nil
}

// Register создает пользователя. Занятое имя дает ErrDuplicateUsername, занятая почта ErrDuplicateEmail.
// Проверка перед вставкой рекомендательная: гонку разрешает уникальный индекс хранилища,
// и его ошибка повторно классифицируется.
func (s *IdentityService) Register(ctx context.Context, args RegisterArgs) (*models.User, error) {
	user, err := s.register(ctx, args)
	s.opts.Metrics.UserRegistered(err == nil)
	return user, err
}

func (s *IdentityService) register(ctx context.Context, args RegisterArgs) (*models.User, error) {
	args.Username = strings.TrimSpace(args.Username)
	args.Email = strings.TrimSpace(args.Email)
	if err := validateIdentity(args.Username, args.Email); err != nil {
		return nil, err
	}
	if args.Password == "" || len(args.Password) > MaxPasswordBytes {
		return nil, errors.Wrapf(ErrInvalidInput, "password must be 1..%d bytes", MaxPasswordBytes)
	}

	if err := checkIdentityTaken(ctx, s.users, 0, args.Username, args.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(args.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     args.Username,
		Email:        args.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, classifyDuplicate(ctx, s.users, 0, args.Username, args.Email)
		}
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}
	s.logger.Infof("user %d registered", user.ID)
	return user, nil
}

// Authenticate проверяет почту и пароль и открывает сессию.
// Неизвестная почта и неверный пароль неразличимы: оба дают ErrInvalidCredentials.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	res, err := s.authenticate(ctx, email, password)
	s.opts.Metrics.LoginAttempt(err == nil)
	return res, err
}

func (s *IdentityService) authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrap(ErrUnknown, err.Error())
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); cmpErr != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.opts.SessionTTL),
		CreatedAt: now,
	}
	if err = s.sessions.Create(ctx, session); err != nil {
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}

	token, err := tokens.GenerateSessionJWT(session.ID, user.ID, session.ExpiresAt, s.opts.SessionSecret)
	if err != nil {
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}
	return &AuthResult{User: user, Session: session, Token: token}, nil
}

// Logout удаляет сессию. Повторный выход успешен.
func (s *IdentityService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return errors.Wrap(ErrUnknown, err.Error())
	}
	return nil
}

// Authorize проверяет токен сессии и возвращает пользователя и сессию.
// Любая проблема с токеном, сессией или пользователем дает ErrUnauthenticated.
// Просроченная сессия удаляется из хранилища.
func (s *IdentityService) Authorize(ctx context.Context, token string) (*models.User, *models.Session, error) {
	claims, err := tokens.ValidateSessionJWT(token, s.opts.SessionSecret)
	if err != nil {
		return nil, nil, errors.Wrap(ErrUnauthenticated, err.Error())
	}

	session, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, errors.Wrap(ErrUnauthenticated, "session not found")
		}
		return nil, nil, errors.Wrap(ErrUnknown, err.Error())
	}
	if session.UserID != claims.UserID {
		return nil, nil, errors.Wrap(ErrUnauthenticated, "session owner mismatch")
	}
	if session.IsExpired(s.now()) {
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
			s.logger.WithError(delErr).Warn("failed to delete expired session")
		}
		return nil, nil, errors.Wrap(ErrUnauthenticated, "session expired")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, errors.Wrap(ErrUnauthenticated, "session user not found")
		}
		return nil, nil, errors.Wrap(ErrUnknown, err.Error())
	}
	return user, session, nil
}
