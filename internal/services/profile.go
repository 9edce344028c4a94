package services

import (
	"context"
	"strings"

	"github.com/fsdevblog/urlkeeper/internal/models"
	"github.com/fsdevblog/urlkeeper/internal/repositories"
	"github.com/pkg/errors"
)

// UpdateProfileArgs новые значения профиля. Совпадение с текущими значениями допустимо.
type UpdateProfileArgs struct {
	Username string
	Email    string
}

type ProfileService struct {
	users UserRepository
}

func NewProfileService(users UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// UpdateProfile меняет имя и почту пользователя userID с проверкой уникальности
// среди остальных пользователей.
func (p *ProfileService) UpdateProfile(ctx context.Context, userID uint, args UpdateProfileArgs) (*models.User, error) {
	args.Username = strings.TrimSpace(args.Username)
	args.Email = strings.TrimSpace(args.Email)
	if err := validateIdentity(args.Username, args.Email); err != nil {
		return nil, err
	}

	if _, err := p.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errors.Wrapf(ErrRecordNotFound, "user %d", userID)
		}
		return nil, errors.Wrap(ErrUnknown, err.Error())
	}

	if err := checkIdentityTaken(ctx, p.users, userID, args.Username, args.Email); err != nil {
		return nil, err
	}

	user, err := p.users.UpdateProfile(ctx, userID, args.Username, args.Email)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, errors.Wrapf(ErrRecordNotFound, "user %d", userID)
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, classifyDuplicate(ctx, p.users, userID, args.Username, args.Email)
		default:
			return nil, errors.Wrap(ErrUnknown, err.Error())
		}
	}
	return user, nil
}
