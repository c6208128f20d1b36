package models

import "time"

// Review dibuat client untuk freelancer saat project ditandai selesai.
type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"not null;uniqueIndex" json:"project_id"`
	ClientID     uint      `gorm:"not null" json:"client_id"`
	FreelancerID uint      `gorm:"not null;index" json:"freelancer_id"`
	Rating       int       `gorm:"not null" json:"rating"` // 1..5
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}
