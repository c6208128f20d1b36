package Controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/controllers"
	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/services"
	"github.com/yeremiapane/freelance-market/utils"
)

func setupNotificationRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(asUser(userID, models.RoleFreelancer))

	notifCtrl := controllers.NewNotificationController(db, services.NewNotificationService(db))
	router.GET("/notifications", notifCtrl.GetMyNotifications)
	router.PATCH("/notifications/:notif_id/read", notifCtrl.MarkNotificationRead)

	return router
}

func TestNotificationListAndMarkRead(t *testing.T) {
	utils.InitLogger()

	db := setupTestDB()
	user := models.User{Name: "Freelancer", Email: "freelancer@example.com", Password: "x", Role: models.RoleFreelancer}
	other := models.User{Name: "Other", Email: "other@example.com", Password: "x", Role: models.RoleFreelancer}
	db.Create(&user)
	db.Create(&other)

	first := models.Notification{UserID: user.ID, Type: models.NotifBidAccepted, Message: "Your bid was accepted"}
	second := models.Notification{UserID: user.ID, Type: models.NotifProjectCompleted, Message: "Project done"}
	foreign := models.Notification{UserID: other.ID, Type: models.NotifBidRejected, Message: "Not yours"}
	db.Create(&first)
	db.Create(&second)
	db.Create(&foreign)

	router := setupNotificationRouter(db, user.ID)

	// List hanya milik user login
	req, _ := http.NewRequest("GET", "/notifications", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	list := resp["data"].([]interface{})
	assert.Len(t, list, 2)

	// Mark read
	url := fmt.Sprintf("/notifications/%d/read", first.ID)
	req, _ = http.NewRequest("PATCH", url, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Filter unread tinggal satu
	req, _ = http.NewRequest("GET", "/notifications?unread=true", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	json.Unmarshal(w.Body.Bytes(), &resp)
	list = resp["data"].([]interface{})
	assert.Len(t, list, 1)

	// Notifikasi milik user lain tidak bisa ditandai
	url = fmt.Sprintf("/notifications/%d/read", foreign.ID)
	req, _ = http.NewRequest("PATCH", url, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
