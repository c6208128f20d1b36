package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/events"
	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/utils"
)

// BidService mengelola lifecycle satu bid:
// pending -> {accepted, rejected, withdrawn}, ketiganya terminal.
type BidService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewBidService(db *gorm.DB, notifier *NotificationService) *BidService {
	return &BidService{db: db, notifier: notifier}
}

// SubmitBid membuat bid pending baru untuk project yang masih published.
func (bs *BidService) SubmitBid(projectID, freelancerID uint, amount float64, deliveryDays int, coverLetter string) (*models.Bid, error) {
	if amount <= 0 || deliveryDays <= 0 {
		return nil, ErrInvalidInput
	}

	var project models.Project
	if err := bs.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if project.Status != models.ProjectPublished {
		return nil, ErrProjectNotOpen
	}

	if project.ClientID == freelancerID {
		return nil, ErrForbidden
	}

	// Maksimal satu bid non-withdrawn per (project, freelancer)
	var existing int64
	err := bs.db.Model(&models.Bid{}).
		Where("project_id = ? AND freelancer_id = ? AND status <> ?",
			projectID, freelancerID, models.BidWithdrawn).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrDuplicateBid
	}

	bid := models.Bid{
		ProjectID:    projectID,
		FreelancerID: freelancerID,
		Amount:       amount,
		DeliveryDays: deliveryDays,
		CoverLetter:  coverLetter,
		Status:       models.BidPending,
		Active:       models.LiveBidFlag(),
	}

	// Unique index (project_id, freelancer_id, active) adalah backstop
	// untuk dua submit bersamaan yang lolos hitungan di atas
	if err := bs.db.Create(&bid).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "UNIQUE constraint") ||
			strings.Contains(err.Error(), "Duplicate entry") {
			return nil, ErrDuplicateBid
		}
		return nil, err
	}

	// Side effect best-effort ke pemilik project
	bs.notifier.Notify(project.ClientID, models.NotifBidSubmitted,
		"New bid received",
		fmt.Sprintf("A new bid of Rp %s was submitted on %q", utils.FormatCurrency(amount), project.Title),
		map[string]interface{}{"project_id": projectID, "bid_id": bid.ID})
	events.BroadcastBidUpdate(events.EventBidSubmitted, bid)

	return &bid, nil
}

// WithdrawBid menarik bid milik freelancer sendiri selama masih pending.
func (bs *BidService) WithdrawBid(bidID, byFreelancerID uint) (*models.Bid, error) {
	var bid models.Bid
	if err := bs.db.First(&bid, bidID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if bid.FreelancerID != byFreelancerID {
		return nil, ErrForbidden
	}

	// Update kondisional supaya status terminal tidak pernah ditimpa;
	// active dikosongkan supaya slot bid (project, freelancer) terbuka lagi
	result := bs.db.Model(&models.Bid{}).
		Where("id = ? AND status = ?", bidID, models.BidPending).
		Updates(map[string]interface{}{
			"status": models.BidWithdrawn,
			"active": nil,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	bid.Status = models.BidWithdrawn
	events.BroadcastBidUpdate(events.EventBidWithdrawn, bid)

	return &bid, nil
}

// RejectBid menolak satu bid pending; hanya pemilik project yang boleh.
func (bs *BidService) RejectBid(bidID, byOwnerID uint) (*models.Bid, error) {
	var bid models.Bid
	if err := bs.db.Preload("Project").First(&bid, bidID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if bid.Project.ClientID != byOwnerID {
		return nil, ErrForbidden
	}

	result := bs.db.Model(&models.Bid{}).
		Where("id = ? AND status = ?", bidID, models.BidPending).
		Update("status", models.BidRejected)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	bid.Status = models.BidRejected

	bs.notifier.Notify(bid.FreelancerID, models.NotifBidRejected,
		"Bid rejected",
		fmt.Sprintf("Your bid on %q was rejected", bid.Project.Title),
		map[string]interface{}{"project_id": bid.ProjectID, "bid_id": bid.ID})
	events.BroadcastBidUpdate(events.EventBidRejected, bid)

	return &bid, nil
}
