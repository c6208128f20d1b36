package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/freelance-market/services"
	"github.com/yeremiapane/freelance-market/utils"
)

type ModerationController struct {
	Cache *services.ModerationCache
}

func NewModerationController(cache *services.ModerationCache) *ModerationController {
	return &ModerationController{Cache: cache}
}

// CheckText -> cek teks lewat moderation cache
func (mc *ModerationController) CheckText(c *gin.Context) {
	type request struct {
		Text *string `json:"text"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		respondServiceError(c, services.ErrInvalidInput)
		return
	}

	result := mc.Cache.Check(*req.Text)
	utils.RespondJSON(c, http.StatusOK, "Moderation result", result)
}
