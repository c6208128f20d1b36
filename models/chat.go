package models

import "time"

// ChatMessage adalah pesan antara client dan freelancer dalam satu project.
// Pesan pertama dibuat otomatis saat bid diterima.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
