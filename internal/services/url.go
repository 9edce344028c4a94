package services

import (
	"context"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/fsdevblog/urlkeeper/internal/metrics"
	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MaxShortCodeAttempts сколько раз Shorten пробует вставку с новым кодом, прежде чем сдаться.
const MaxShortCodeAttempts = 10

// hostnameRegex в соответствии с `RFC 1123` за исключением - исключает корневые доменные имена (без зоны).
var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9](-?[a-zA-Z0-9])*\.)+([a-zA-Z0-9](-?[a-zA-Z0-9])*)$`)

// ShortenArgs аргументы создания короткой ссылки. OwnerID может быть nil.
type ShortenArgs struct {
	OriginalURL string
	OwnerID     *uint
}

// URLService Сервис работает с хранилищем в контексте таблицы `urls`.
type URLService struct {
	urlRepo   URLRepository
	generator CodeGenerator
	metrics   *metrics.Metrics
	logger    *logrus.Entry
}

func NewURLService(
	urlRepo URLRepository,
	generator CodeGenerator,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *URLService {
	return &URLService{
		urlRepo:   urlRepo,
		generator: generator,
		metrics:   m,
		logger:    logger.WithField("module", "service/url"),
	}
}

// Shorten валидирует ссылку и сохраняет ее под новым случайным кодом.
// Коды, совпадающие с корневыми маршрутами, отбрасываются без вставки.
// Арбитром уникальности служит вставка: занятый код приводит к повтору с новым кодом,
// после MaxShortCodeAttempts неудач возвращается ErrPersistenceConflict.
// Один и тот же URL, сокращенный дважды, дает две разные записи.
func (u *URLService) Shorten(ctx context.Context, args ShortenArgs) (*models.URL, error) {
	parsedURL, err := validateURL(args.OriginalURL)
	if err != nil {
		u.metrics.URLCreated(false)
		return nil, err
	}

	for attempt := 1; attempt <= MaxShortCodeAttempts; attempt++ {
		code, genErr := u.generator.Generate()
		if genErr != nil {
			u.metrics.URLCreated(false)
			return nil, errors.Wrap(ErrUnknown, genErr.Error())
		}
		if IsReservedShortCode(code) {
			u.metrics.CodeCollision()
			u.logger.Warnf("short code %q is a route name, attempt %d of %d", code, attempt, MaxShortCodeAttempts)
			continue
		}

		sURL, createErr := u.urlRepo.Create(ctx, &models.URL{
			OriginalURL: parsedURL,
			ShortCode:   code,
			UserID:      args.OwnerID,
		})
		if createErr == nil {
			u.metrics.URLCreated(true)
			return sURL, nil
		}
		if !errors.Is(createErr, repositories.ErrDuplicateKey) {
			u.metrics.URLCreated(false)
			return nil, errors.Wrap(ErrUnknown, createErr.Error())
		}
		u.metrics.CodeCollision()
		u.logger.Warnf("short code collision, attempt %d of %d", attempt, MaxShortCodeAttempts)
	}

	u.metrics.URLCreated(false)
	return nil, errors.Wrapf(ErrPersistenceConflict, "no free short code after %d attempts", MaxShortCodeAttempts)
}

// Resolve находит ссылку по коду и засчитывает переход.
// Коды неверного формата отклоняются без обращения к хранилищу.
func (u *URLService) Resolve(ctx context.Context, code string) (*models.URL, error) {
	if !IsValidShortCode(code) {
		u.metrics.URLResolved(false)
		return nil, errors.Wrapf(ErrRecordNotFound, "code %q has invalid format", code)
	}
	sURL, err := u.urlRepo.IncrementClicks(ctx, code)
	if err != nil {
		u.metrics.URLResolved(false)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "code %s not found", code)
		}
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}
	u.metrics.URLResolved(true)
	return sURL, nil
}

// ListByOwner возвращает ссылки пользователя явным запросом по владельцу.
func (u *URLService) ListByOwner(ctx context.Context, ownerID uint) ([]models.URL, error) {
	urls, err := u.urlRepo.ListByUserID(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}
	return urls, nil
}

// validateURL проверяет, является ли строка корректным http(s) URL, и возвращает ее без пробелов по краям.
func validateURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.Wrap(ErrInvalidURL, "url is empty")
	}
	if len(rawURL) > models.MaxOriginalURLLength {
		return "", errors.Wrapf(ErrInvalidURL, "url is longer than %d characters", models.MaxOriginalURLLength)
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", errors.Wrap(ErrInvalidURL, "invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", errors.Wrap(ErrInvalidURL, "URL must have http or https scheme")
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return "", errors.Wrap(ErrInvalidURL, "URL must have a host")
	}

	if hostname != "localhost" && net.ParseIP(hostname) == nil && !hostnameRegex.MatchString(hostname) {
		return "", errors.Wrap(ErrInvalidURL, "invalid hostname")
	}

	return rawURL, nil
}
