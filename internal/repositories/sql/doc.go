// Package sql предоставляет gorm реализации репозиториев пользователей, ссылок и сессий.
// Один и тот же код работает поверх sqlite и PostgreSQL.
//
// Соединение должно быть открыто с gorm.Config{TranslateError: true}, тогда ошибки драйвера
// преобразуются в общие ошибки уровня репозитория с помощью convertErrorType:
//   - gorm.ErrDuplicatedKey -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package sql
