package models

import "time"

// Jenis event notifikasi
const (
	NotifBidSubmitted     = "bid_submitted"
	NotifBidAccepted      = "bid_accepted"
	NotifBidRejected      = "bid_rejected"
	NotifProjectStarted   = "project_started"
	NotifProjectCompleted = "project_completed"
	NotifPaymentReceived  = "payment_received"
	NotifPaymentReleased  = "payment_released"
)

// Notification hanya berubah pada flag IsRead; tidak pernah dihapus oleh
// coordinator (arsip urusan lain).
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Title     string    `gorm:"type:varchar(100)" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Metadata  string    `gorm:"type:text" json:"metadata"` // JSON bebas
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
