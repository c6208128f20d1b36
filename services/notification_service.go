package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/events"
	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/utils"
)

// SideEffect mencatat hasil satu side effect best-effort (notifikasi,
// push websocket, pesan chat awal). Dikembalikan ke pemanggil supaya bisa
// diobservasi/ditest, bukan hanya masuk log.
type SideEffect struct {
	Kind   string `json:"kind"`
	Target uint   `json:"target"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// NotificationService menulis notifikasi ke database lalu mendorongnya ke
// websocket hub. Tidak pernah mengembalikan error ke pemanggil; kegagalan
// dicatat di log dan di SideEffect.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify membuat notifikasi untuk satu user. Preferensi channel user
// dikonsultasikan untuk push; baris database selalu ditulis.
func (ns *NotificationService) Notify(userID uint, notifType, title, message string, metadata map[string]interface{}) SideEffect {
	effect := SideEffect{Kind: "notification", Target: userID, OK: true}

	metaJSON := ""
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			metaJSON = string(data)
		}
	}

	notif := models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Metadata: metaJSON,
	}

	if err := ns.db.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to create %s notification for user %d: %v", notifType, userID, err)
		effect.OK = false
		effect.Error = err.Error()
		return effect
	}

	// Push ke websocket hanya jika user mengizinkan
	var user models.User
	if err := ns.db.First(&user, userID).Error; err == nil && user.PushNotifications {
		events.SendNotification(userID, notif)
	}

	utils.InfoLogger.Printf("Notification created: type=%s user=%d", notifType, userID)
	return effect
}

// MarkRead membalik flag is_read; satu-satunya mutasi yang diizinkan
// pada notifikasi.
func (ns *NotificationService) MarkRead(notifID, userID uint) error {
	result := ns.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notifID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
