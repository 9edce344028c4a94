package services

import "errors"

var (
	ErrUnknown             = errors.New("[service]: unknown error")
	ErrRecordNotFound      = errors.New("[service]: record not found")
	ErrDuplicateUsername   = errors.New("[service]: username already taken")
	ErrDuplicateEmail      = errors.New("[service]: email already registered")
	ErrInvalidCredentials  = errors.New("[service]: invalid credentials")
	ErrInvalidURL          = errors.New("[service]: invalid url")
	ErrInvalidInput        = errors.New("[service]: invalid input")
	ErrUnauthenticated     = errors.New("[service]: authentication required")
	ErrPersistenceConflict = errors.New("[service]: persistence conflict")
)
