package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/services"
	"github.com/yeremiapane/freelance-market/utils"
)

type BidController struct {
	DB         *gorm.DB
	Bids       *services.BidService
	Projects   *services.ProjectService
	Moderation *services.ModerationCache
}

func NewBidController(db *gorm.DB, bids *services.BidService, projects *services.ProjectService, moderation *services.ModerationCache) *BidController {
	return &BidController{DB: db, Bids: bids, Projects: projects, Moderation: moderation}
}

// SubmitBid -> freelancer mengajukan bid untuk project published
func (bc *BidController) SubmitBid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	type request struct {
		Amount       float64 `json:"amount" binding:"required,gt=0"`
		DeliveryDays int     `json:"delivery_days" binding:"required,gt=0"`
		CoverLetter  string  `json:"cover_letter"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Cover letter kena moderasi
	if req.CoverLetter != "" {
		if result := bc.Moderation.Check(req.CoverLetter); !result.IsClean {
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("cover letter contains prohibited terms: %v", result.Errors))
			return
		}
	}

	bid, err := bc.Bids.SubmitBid(uint(projectID), userID, req.Amount, req.DeliveryDays, req.CoverLetter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Bid submitted", bid)
}

// GetProjectBids -> semua bid untuk satu project
func (bc *BidController) GetProjectBids(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	var bids []models.Bid
	if err := bc.DB.Preload("Freelancer").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&bids).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Project bids", bids)
}

// GetMyBids -> semua bid milik freelancer yang login
func (bc *BidController) GetMyBids(c *gin.Context) {
	userID, _ := currentUserID(c)

	var bids []models.Bid
	if err := bc.DB.Where("freelancer_id = ?", userID).
		Order("created_at DESC").
		Find(&bids).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My bids", bids)
}

// AcceptBid -> pemilik project menerima satu bid; bid pending lain
// otomatis ditolak dan project berpindah ke in_progress
func (bc *BidController) AcceptBid(c *gin.Context) {
	userID, _ := currentUserID(c)

	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}
	bidID, err := strconv.Atoi(c.Param("bid_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid bid id"))
		return
	}

	result, err := bc.Projects.AcceptBid(uint(projectID), uint(bidID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bid accepted", result)
}

// RejectBid -> pemilik project menolak satu bid pending
func (bc *BidController) RejectBid(c *gin.Context) {
	userID, _ := currentUserID(c)

	bidID, err := strconv.Atoi(c.Param("bid_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid bid id"))
		return
	}

	bid, err := bc.Bids.RejectBid(uint(bidID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bid rejected", bid)
}

// WithdrawBid -> freelancer menarik bid pending miliknya
func (bc *BidController) WithdrawBid(c *gin.Context) {
	userID, _ := currentUserID(c)

	bidID, err := strconv.Atoi(c.Param("bid_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid bid id"))
		return
	}

	bid, err := bc.Bids.WithdrawBid(uint(bidID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bid withdrawn", bid)
}
