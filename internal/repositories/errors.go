package repositories

import "errors"

// Ошибки уровня репозитория. Нативные ошибки хранилищ приводятся к ним в convertErrorType
// каждого бэкенда, сервисы сравнивают только с ними.
var (
	ErrNotFound = errors.New("[repository]: record not found")
	// ErrDuplicateKey нарушение уникального индекса: короткий код, имя или почта заняты.
	ErrDuplicateKey = errors.New("[repository]: duplicate key")
	ErrUnknown      = errors.New("[repository]: unknown error")
)
