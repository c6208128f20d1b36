package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/services"
	"github.com/yeremiapane/freelance-market/utils"
)

type NotificationController struct {
	DB            *gorm.DB
	Notifications *services.NotificationService
}

func NewNotificationController(db *gorm.DB, notifications *services.NotificationService) *NotificationController {
	return &NotificationController{DB: db, Notifications: notifications}
}

// GetMyNotifications -> notifikasi milik user yang login
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	query := nc.DB.Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifs []models.Notification
	if err := query.Order("created_at DESC").Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My notifications", notifs)
}

// MarkNotificationRead -> satu-satunya mutasi notifikasi
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	userID, _ := currentUserID(c)

	notifID, err := strconv.Atoi(c.Param("notif_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	if err := nc.Notifications.MarkRead(uint(notifID), userID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"notif_id": notifID})
}
