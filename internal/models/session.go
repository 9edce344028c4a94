package models

import "time"

// Session сессия пользователя после успешного входа.
type Session struct {
	ID        string    `json:"id"        gorm:"primaryKey;size:36"`
	UserID    uint      `json:"userId"    gorm:"not null;index"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired возвращает true, если срок действия сессии истек к моменту now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
