package models

import "time"

// Role user di marketplace
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(255); not null" json:"name"`
	Email    string `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password string `gorm:"type:varchar(255); not null" json:"-"`
	Role     string `gorm:"type:varchar(20); not null" json:"role"`
	Phone    string `gorm:"type:varchar(30)" json:"phone"`

	// Statistik freelancer, diupdate saat project selesai
	Rating            float64 `gorm:"type:decimal(3,2);default:0" json:"rating"`
	RatingCount       int     `gorm:"default:0" json:"rating_count"`
	CompletedProjects int     `gorm:"default:0" json:"completed_projects"`
	TotalEarnings     float64 `gorm:"type:decimal(12,2);default:0" json:"total_earnings"`

	// Preferensi channel notifikasi
	EmailNotifications bool `gorm:"default:true" json:"email_notifications"`
	PushNotifications  bool `gorm:"default:true" json:"push_notifications"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleFreelancer, RoleAdmin:
		return true
	default:
		return false
	}
}
