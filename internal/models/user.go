package models

import "time"

// User структура модели пользователя.
type User struct {
	ID           uint      `json:"id"        gorm:"primaryKey"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Username     string    `json:"username"  gorm:"size:50;not null;uniqueIndex"`
	Email        string    `json:"email"     gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string    `json:"-"         gorm:"size:255;not null"`
}
