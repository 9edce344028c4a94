// Package memstore предоставляет реализацию репозиториев пользователей, ссылок и сессий
// для in-memory хранилища.
//
// Уникальные ограничения эмулируются мьютексом репозитория вокруг проверки и вставки.
// Все методы репозитория преобразуют внутренние ошибки хранилища в общие ошибки уровня репозитория
// с помощью convertErrorType:
//   - memory.ErrDuplicateKey -> repositories.ErrDuplicateKey
//   - memory.ErrNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package memstore
