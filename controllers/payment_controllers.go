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

type PaymentController struct {
	DB       *gorm.DB
	Payments *services.PaymentService
}

func NewPaymentController(db *gorm.DB, payments *services.PaymentService) *PaymentController {
	return &PaymentController{DB: db, Payments: payments}
}

// CreateEscrow -> client menyetor dana untuk project in_progress
func (pc *PaymentController) CreateEscrow(c *gin.Context) {
	userID, _ := currentUserID(c)

	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid project id"))
		return
	}

	payment, err := pc.Payments.CreateEscrow(uint(projectID), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Escrow payment created", payment)
}

// GetPayment -> detail pembayaran; hanya pihak terkait yang boleh lihat
func (pc *PaymentController) GetPayment(c *gin.Context) {
	userID, _ := currentUserID(c)

	paymentID, err := strconv.Atoi(c.Param("payment_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid payment id"))
		return
	}

	var payment models.Payment
	if err := pc.DB.Preload("Project").First(&payment, paymentID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	isFreelancer := payment.Project.FreelancerID != nil && *payment.Project.FreelancerID == userID
	if payment.ClientID != userID && !isFreelancer {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}

// PaymentCallback -> webhook Midtrans (public, diverifikasi via signature)
func (pc *PaymentController) PaymentCallback(c *gin.Context) {
	var notif struct {
		OrderID           string `json:"order_id"`
		StatusCode        string `json:"status_code"`
		GrossAmount       string `json:"gross_amount"`
		TransactionStatus string `json:"transaction_status"`
		SignatureKey      string `json:"signature_key"`
	}
	if err := c.ShouldBindJSON(&notif); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, err := pc.Payments.HandleCallback(
		notif.OrderID, notif.StatusCode, notif.GrossAmount,
		notif.TransactionStatus, notif.SignatureKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Callback processed", gin.H{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}
