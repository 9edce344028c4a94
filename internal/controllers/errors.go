package controllers

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/urlkeeper/internal/services"
)

// Коды ошибок в JSON ответах.
const (
	CodeDuplicateUsername   = "DUPLICATE_USERNAME"
	CodeDuplicateEmail      = "DUPLICATE_EMAIL"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidURL          = "INVALID_URL"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidPayload      = "INVALID_PAYLOAD"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodePersistenceConflict = "PERSISTENCE_CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrInvalidPayload тело запроса не разобрано или не прошло проверку полей.
var ErrInvalidPayload = errors.New("invalid payload")

type httpError struct {
	status  int
	code    string
	message string
}

// classifyError сопоставляет ошибку сервисного слоя HTTP статусу, коду и сообщению для клиента.
func classifyError(err error) httpError {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		return httpError{http.StatusConflict, CodeDuplicateUsername,
			"Username already exists! Please choose another one."}
	case errors.Is(err, services.ErrDuplicateEmail):
		return httpError{http.StatusConflict, CodeDuplicateEmail,
			"Email already registered! Please use another email."}
	case errors.Is(err, services.ErrInvalidCredentials):
		return httpError{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password."}
	case errors.Is(err, services.ErrUnauthenticated):
		return httpError{http.StatusUnauthorized, CodeUnauthenticated, "Authentication required"}
	case errors.Is(err, services.ErrInvalidURL):
		return httpError{http.StatusUnprocessableEntity, CodeInvalidURL, "Invalid URL"}
	case errors.Is(err, services.ErrInvalidInput):
		return httpError{http.StatusBadRequest, CodeInvalidInput, "Invalid input"}
	case errors.Is(err, ErrInvalidPayload):
		return httpError{http.StatusBadRequest, CodeInvalidPayload, "Invalid request payload"}
	case errors.Is(err, services.ErrRecordNotFound):
		return httpError{http.StatusNotFound, CodeNotFound, "Not found"}
	case errors.Is(err, services.ErrPersistenceConflict):
		return httpError{http.StatusServiceUnavailable, CodePersistenceConflict,
			"Service temporarily unavailable, please retry"}
	default:
		return httpError{http.StatusInternalServerError, CodeInternal, "Internal server error"}
	}
}
