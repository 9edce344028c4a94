package models

import "time"

// ShortCodeLength длина короткого кода ссылки.
const ShortCodeLength = 6

// MaxOriginalURLLength максимальная длина исходной ссылки.
const MaxOriginalURLLength = 2048

// URL структура модели хранения сокращенной ссылки.
//
// Владелец хранится только идентификатором, список ссылок пользователя
// получается явным запросом по UserID.
type URL struct {
	ID          uint      `json:"id"                gorm:"primaryKey"`
	CreatedAt   time.Time `json:"createdAt"`
	OriginalURL string    `json:"originalUrl"       gorm:"size:2048;not null"`
	ShortCode   string    `json:"shortCode"         gorm:"size:6;not null;uniqueIndex"`
	ClickCount  int64     `json:"clickCount"        gorm:"not null;default:0"`
	UserID      *uint     `json:"userId,omitempty"  gorm:"index"`
}
