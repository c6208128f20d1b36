package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/utils"
)

type ChatController struct {
	DB *gorm.DB
}

func NewChatController(db *gorm.DB) *ChatController {
	return &ChatController{DB: db}
}

// projectParticipant memastikan user adalah client atau freelancer project.
func (cc *ChatController) projectParticipant(projectID, userID uint) (*models.Project, bool, error) {
	var project models.Project
	if err := cc.DB.First(&project, projectID).Error; err != nil {
		return nil, false, err
	}
	if project.ClientID == userID {
		return &project, true, nil
	}
	if project.FreelancerID != nil && *project.FreelancerID == userID {
		return &project, true, nil
	}
	return &project, false, nil
}

// GetProjectChat -> riwayat chat sebuah project
func (cc *ChatController) GetProjectChat(c *gin.Context) {
	userID, _ := currentUserID(c)

	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	_, allowed, err := cc.projectParticipant(uint(projectID), userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !allowed {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var messages []models.ChatMessage
	if err := cc.DB.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Project chat", messages)
}

// PostProjectChat -> kirim pesan di chat project
func (cc *ChatController) PostProjectChat(c *gin.Context) {
	userID, _ := currentUserID(c)

	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	_, allowed, err := cc.projectParticipant(uint(projectID), userID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if !allowed {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	msg := models.ChatMessage{
		ProjectID: uint(projectID),
		SenderID:  userID,
		Body:      req.Body,
	}
	if err := cc.DB.Create(&msg).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Message sent", msg)
}
