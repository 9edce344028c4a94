package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// SessionClaims представляет данные JWT токена сессии. Идентификатор сессии хранится в jti.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID uint `json:"uid"`
}

// SessionID возвращает идентификатор сессии из claim jti.
func (c *SessionClaims) SessionID() string {
	return c.ID
}

// GenerateSessionJWT создает JWT токен сессии.
//
// Параметры:
//   - sessionID: идентификатор сессии
//   - userID: идентификатор пользователя
//   - expiresAt: момент истечения сессии
//   - key: ключ для подписи токена
//
// Возвращает:
//   - string: сгенерированный JWT токен
//   - error: ошибка генерации токена
func GenerateSessionJWT(sessionID string, userID uint, expiresAt time.Time, key []byte) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}
	token, err := generateJWT(claims, key)
	if err != nil {
		return "", fmt.Errorf("generating session jwt token: %w", err)
	}
	return token, nil
}

// ValidateSessionJWT проверяет подпись и срок действия токена сессии.
//
// Параметры:
//   - tokenString: JWT токен в виде строки
//   - key: ключ для проверки подписи
//
// Возвращает:
//   - *SessionClaims: данные токена
//   - error: ErrTokenExpired если истек срок действия, ErrInvalidToken в остальных случаях
func ValidateSessionJWT(tokenString string, key []byte) (*SessionClaims, error) {
	token, err := validateJWT(tokenString, new(SessionClaims), key)
	if err != nil {
		return nil, fmt.Errorf("validating session jwt token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.ID == "" {
		return nil, errors.Wrap(ErrInvalidToken, "invalid claims")
	}
	return claims, nil
}

// generateJWT создает JWT токен с указанными данными.
func generateJWT(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating jwt token: %w", err)
	}

	return tokenString, nil
}

// validateJWT проверяет JWT токен. Сам токен в текст ошибки не попадает.
func validateJWT(tokenString string, claims jwt.Claims, key []byte) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}
