package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/events"
	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/utils"
)

// Status pembayaran escrow
const (
	PaymentStatusPending  = "pending"
	PaymentStatusSuccess  = "success"
	PaymentStatusFailed   = "failed"
	PaymentStatusExpired  = "expired"
	PaymentStatusReleased = "released"
)

// PaymentService menangani dana escrow project: client menyetor lewat
// Midtrans saat project berjalan, dana dilepas ke freelancer saat selesai.
type PaymentService struct {
	db       *gorm.DB
	gateway  *MidtransService
	notifier *NotificationService
	stopChan chan struct{}
}

func NewPaymentService(db *gorm.DB, gateway *MidtransService, notifier *NotificationService) *PaymentService {
	return &PaymentService{
		db:       db,
		gateway:  gateway,
		notifier: notifier,
		stopChan: make(chan struct{}),
	}
}

// CreateEscrow membuat pembayaran escrow untuk project in_progress.
// Jumlahnya mengikuti bid yang diterima.
func (s *PaymentService) CreateEscrow(projectID, callerID uint) (*models.Payment, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if project.ClientID != callerID {
		return nil, ErrForbidden
	}
	if project.Status != models.ProjectInProgress || project.AcceptedBidID == nil {
		return nil, ErrInvalidState
	}

	// Satu escrow aktif per project
	var active int64
	err := s.db.Model(&models.Payment{}).
		Where("project_id = ? AND status IN ?", projectID,
			[]string{PaymentStatusPending, PaymentStatusSuccess, PaymentStatusReleased}).
		Count(&active).Error
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrInvalidState
	}

	var bid models.Bid
	if err := s.db.First(&bid, *project.AcceptedBidID).Error; err != nil {
		return nil, err
	}

	var client models.User
	if err := s.db.First(&client, callerID).Error; err != nil {
		return nil, err
	}

	expiredAt := time.Now().Add(24 * time.Hour)
	payment := models.Payment{
		ProjectID:   projectID,
		ClientID:    callerID,
		Amount:      bid.Amount,
		Status:      PaymentStatusPending,
		ReferenceID: fmt.Sprintf("ESCROW-%d-%s", projectID, uuid.NewString()),
		ExpiredAt:   &expiredAt,
	}

	// Buat transaksi Snap; tanpa gateway (mis. di test) escrow tetap dibuat
	// dan diselesaikan lewat callback manual
	if s.gateway != nil {
		resp, err := s.gateway.CreateSnapTransaction(payment.ReferenceID, payment.Amount, client.Name, client.Email)
		if err != nil {
			utils.ErrorLogger.Printf("Midtrans snap failed for project %d: %v", projectID, err)
			return nil, err
		}
		payment.SnapToken = resp.Token
		payment.PaymentURL = resp.RedirectURL
	}

	if err := s.db.Create(&payment).Error; err != nil {
		return nil, err
	}

	events.BroadcastPaymentUpdate(events.EventPaymentPending, payment)
	utils.InfoLogger.Printf("Escrow created: project=%d ref=%s amount=%s",
		projectID, payment.ReferenceID, utils.FormatCurrency(payment.Amount))

	return &payment, nil
}

// HandleCallback memproses webhook Midtrans. Signature diverifikasi dulu;
// transisi status hanya dari pending supaya callback ganda tidak merusak.
func (s *PaymentService) HandleCallback(orderID, statusCode, grossAmount, transactionStatus, signatureKey string) (*models.Payment, error) {
	if s.gateway != nil && !s.gateway.VerifySignature(orderID, statusCode, grossAmount, signatureKey) {
		return nil, ErrForbidden
	}

	var payment models.Payment
	if err := s.db.Where("reference_id = ?", orderID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var newStatus string
	switch transactionStatus {
	case "capture", "settlement":
		newStatus = PaymentStatusSuccess
	case "expire":
		newStatus = PaymentStatusExpired
	case "deny", "cancel", "failure":
		newStatus = PaymentStatusFailed
	default:
		// pending dan status antara lainnya dibiarkan
		return &payment, nil
	}

	now := time.Now()
	updates := map[string]interface{}{"status": newStatus}
	if newStatus == PaymentStatusSuccess {
		updates["payment_time"] = now
	}

	result := s.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Sudah diproses callback sebelumnya
		return &payment, nil
	}

	s.db.First(&payment, payment.ID)

	if newStatus == PaymentStatusSuccess {
		s.notifier.Notify(payment.ClientID, models.NotifPaymentReceived,
			"Payment received",
			fmt.Sprintf("Your escrow payment of Rp %s was received", utils.FormatCurrency(payment.Amount)),
			map[string]interface{}{"payment_id": payment.ID, "project_id": payment.ProjectID})
		events.BroadcastPaymentUpdate(events.EventPaymentSuccess, payment)
	}

	utils.InfoLogger.Printf("Payment %s -> %s (ref=%s)", transactionStatus, newStatus, orderID)
	return &payment, nil
}

// ReleaseEscrow melepas dana escrow sukses ke freelancer saat project
// selesai. Best-effort: kegagalan dicatat, tidak membatalkan penyelesaian.
func (s *PaymentService) ReleaseEscrow(projectID, freelancerID uint) SideEffect {
	effect := SideEffect{Kind: "escrow_release", Target: freelancerID, OK: true}

	var payment models.Payment
	err := s.db.Where("project_id = ? AND status = ?", projectID, PaymentStatusSuccess).
		First(&payment).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Printf("Error looking up escrow for project %d: %v", projectID, err)
			effect.Error = err.Error()
		} else {
			effect.Error = "no funded escrow for this project"
		}
		effect.OK = false
		return effect
	}

	now := time.Now()
	result := s.db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, PaymentStatusSuccess).
		Updates(map[string]interface{}{
			"status":      PaymentStatusReleased,
			"released_at": now,
		})
	if result.Error != nil || result.RowsAffected == 0 {
		if result.Error != nil {
			utils.ErrorLogger.Printf("Failed to release escrow %d: %v", payment.ID, result.Error)
			effect.Error = result.Error.Error()
		} else {
			effect.Error = "escrow already released"
		}
		effect.OK = false
		return effect
	}

	s.db.First(&payment, payment.ID)

	s.notifier.Notify(freelancerID, models.NotifPaymentReleased,
		"Funds released",
		fmt.Sprintf("Rp %s has been released to you", utils.FormatCurrency(payment.Amount)),
		map[string]interface{}{"payment_id": payment.ID, "project_id": projectID})
	events.BroadcastPaymentUpdate(events.EventPaymentReleased, payment)

	return effect
}

// StartTimeoutChecker menjalankan goroutine yang menandai pembayaran
// pending kadaluarsa.
func (s *PaymentService) StartTimeoutChecker() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.CheckExpiredPayments()
			case <-s.stopChan:
				return
			}
		}
	}()
}

func (s *PaymentService) StopTimeoutChecker() {
	close(s.stopChan)
}

// CheckExpiredPayments menandai pembayaran pending yang sudah melewati
// ExpiredAt sebagai expired.
func (s *PaymentService) CheckExpiredPayments() {
	payments := make([]*models.Payment, 0)

	// Cutoff langsung di query; baris yang belum lewat ExpiredAt tidak
	// pernah di-scan
	result := s.db.
		Where("status = ? AND expired_at IS NOT NULL AND expired_at <= ?",
			PaymentStatusPending, time.Now()).
		Find(&payments)
	if result.Error != nil {
		utils.ErrorLogger.Printf("Error checking expired payments: %v", result.Error)
		return
	}

	for _, payment := range payments {
		res := s.db.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, PaymentStatusPending).
			Update("status", PaymentStatusExpired)
		if res.Error != nil {
			utils.ErrorLogger.Printf("Error updating expired payment %d: %v", payment.ID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			payment.Status = PaymentStatusExpired
			utils.InfoLogger.Printf("Payment %d expired (ref=%s)", payment.ID, payment.ReferenceID)
		}
	}
}
