package services

import (
	"context"
	"net/mail"

	"github.com/fsdevblog/urlkeeper/internal/repositories"
	"github.com/pkg/errors"
)

// validateIdentity проверяет имя и почту пользователя по ограничениям схемы.
func validateIdentity(username, email string) error {
	if username == "" || len(username) > MaxUsernameLength {
		return errors.Wrapf(ErrInvalidInput, "username must be 1..%d characters", MaxUsernameLength)
	}
	if email == "" || len(email) > MaxEmailLength {
		return errors.Wrapf(ErrInvalidInput, "email must be 1..%d characters", MaxEmailLength)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return errors.Wrapf(ErrInvalidInput, "email %q is malformed", email)
	}
	return nil
}

// checkIdentityTaken проверяет, не занято ли имя или почта другим пользователем (кроме exceptID).
// Имя проверяется первым.
func checkIdentityTaken(ctx context.Context, users UserRepository, exceptID uint, username, email string) error {
	byName, err := users.GetByUsername(ctx, username)
	switch {
	case err == nil && byName.ID != exceptID:
		return errors.Wrapf(ErrDuplicateUsername, "username %s", username)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return errors.Wrap(ErrUnknown, err.Error())
	}

	byEmail, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil && byEmail.ID != exceptID:
		return errors.Wrapf(ErrDuplicateEmail, "email %s", email)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return errors.Wrap(ErrUnknown, err.Error())
	}
	return nil
}

// classifyDuplicate превращает нарушение уникального индекса, случившееся после
// рекомендательной проверки, в конкретную ошибку. Если повторная проверка ничего не нашла,
// возвращается ErrPersistenceConflict.
func classifyDuplicate(ctx context.Context, users UserRepository, exceptID uint, username, email string) error {
	if err := checkIdentityTaken(ctx, users, exceptID, username, email); err != nil {
		return err
	}
	return errors.Wrap(ErrPersistenceConflict, "unique constraint violated concurrently")
}
