package memory

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey ключ уже занят, а запись идет без WithOverwrite.
	ErrDuplicateKey = errors.New("duplicate key")
)
