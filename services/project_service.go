package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/freelance-market/events"
	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/utils"
)

// ProjectService mengorkestrasi transisi status project lintas entitas:
// menerima satu bid (dan menolak sisanya) serta menyelesaikan project.
type ProjectService struct {
	db       *gorm.DB
	notifier *NotificationService
	payments *PaymentService
}

func NewProjectService(db *gorm.DB, notifier *NotificationService, payments *PaymentService) *ProjectService {
	return &ProjectService{db: db, notifier: notifier, payments: payments}
}

// AcceptBidResult dikembalikan ke controller: entitas hasil transisi plus
// daftar outcome side effect best-effort.
type AcceptBidResult struct {
	Project     models.Project `json:"project"`
	WinningBid  models.Bid     `json:"winning_bid"`
	SideEffects []SideEffect   `json:"side_effects"`
}

// AcceptBid memindahkan project published -> in_progress atas nama
// pemiliknya: bid pemenang jadi accepted, semua bid pending lain jadi
// rejected, freelancer dan bid terpilih tercatat di project.
//
// Seluruh mutasi berjalan dalam satu transaksi, dan transisi project
// memakai UPDATE kondisional pada status sehingga dua AcceptBid bersamaan
// tidak mungkin menghasilkan dua pemenang. Urutan di dalam transaksi:
// pemenang dulu, baru bulk-reject, baru project.
func (ps *ProjectService) AcceptBid(projectID, bidID, callerID uint) (*AcceptBidResult, error) {
	var project models.Project
	if err := ps.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Precondition dicek sebelum mutasi apa pun
	if project.ClientID != callerID {
		return nil, ErrForbidden
	}
	if project.Status != models.ProjectPublished {
		return nil, ErrInvalidState
	}

	var winningBid models.Bid
	if err := ps.db.Where("id = ? AND project_id = ?", bidID, projectID).First(&winningBid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if winningBid.Status != models.BidPending {
		return nil, ErrInvalidTransition
	}

	now := time.Now()

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		// 1. Pemenang: hanya dari pending, supaya bid terminal tidak ditimpa
		result := tx.Model(&models.Bid{}).
			Where("id = ? AND status = ?", bidID, models.BidPending).
			Updates(map[string]interface{}{
				"status":      models.BidAccepted,
				"accepted_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		// 2. Bulk-reject bid pending lain; bid withdrawn/rejected tidak
		//    disentuh (idempoten)
		if err := tx.Model(&models.Bid{}).
			Where("project_id = ? AND id <> ? AND status = ?",
				projectID, bidID, models.BidPending).
			Update("status", models.BidRejected).Error; err != nil {
			return err
		}

		// 3. Transisi project dengan UPDATE kondisional pada status;
		//    RowsAffected 0 berarti request lain sudah menang duluan
		result = tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", projectID, models.ProjectPublished).
			Updates(map[string]interface{}{
				"status":          models.ProjectInProgress,
				"freelancer_id":   winningBid.FreelancerID,
				"accepted_bid_id": bidID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidState
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Muat ulang state final
	if err := ps.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}
	if err := ps.db.First(&winningBid, bidID).Error; err != nil {
		return nil, err
	}

	// Side effects best-effort: tidak pernah membatalkan transisi di atas
	var effects []SideEffect

	effects = append(effects, ps.notifier.Notify(winningBid.FreelancerID, models.NotifBidAccepted,
		"Bid accepted",
		fmt.Sprintf("Your bid of Rp %s on %q was accepted", utils.FormatCurrency(winningBid.Amount), project.Title),
		map[string]interface{}{"project_id": projectID, "bid_id": bidID}))

	effects = append(effects, ps.notifier.Notify(project.ClientID, models.NotifProjectStarted,
		"Project started",
		fmt.Sprintf("Project %q is now in progress", project.Title),
		map[string]interface{}{"project_id": projectID, "freelancer_id": winningBid.FreelancerID}))

	effects = append(effects, ps.seedChatMessage(project, winningBid))

	events.BroadcastBidUpdate(events.EventBidAccepted, winningBid)
	events.BroadcastProjectUpdate(events.EventProjectStarted, project)

	return &AcceptBidResult{
		Project:     project,
		WinningBid:  winningBid,
		SideEffects: effects,
	}, nil
}

// seedChatMessage membuka percakapan project saat bid diterima.
func (ps *ProjectService) seedChatMessage(project models.Project, bid models.Bid) SideEffect {
	effect := SideEffect{Kind: "chat_message", Target: bid.FreelancerID, OK: true}

	msg := models.ChatMessage{
		ProjectID: project.ID,
		SenderID:  project.ClientID,
		Body:      fmt.Sprintf("Hi! Your bid for %q has been accepted. Let's discuss the details here.", project.Title),
	}
	if err := ps.db.Create(&msg).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to seed chat for project %d: %v", project.ID, err)
		effect.OK = false
		effect.Error = err.Error()
	}
	return effect
}

// CompleteProjectResult membawa project final plus review (jika dibuat)
// dan outcome side effect.
type CompleteProjectResult struct {
	Project     models.Project `json:"project"`
	Review      *models.Review `json:"review,omitempty"`
	SideEffects []SideEffect   `json:"side_effects"`
}

// CompleteProject menandai project in_progress sebagai selesai, mencatat
// review opsional, memperbarui statistik freelancer, dan melepas dana
// escrow bila ada.
func (ps *ProjectService) CompleteProject(projectID, callerID uint, finalAmount *float64, rating *int, reviewText *string) (*CompleteProjectResult, error) {
	var project models.Project
	if err := ps.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if project.ClientID != callerID {
		return nil, ErrForbidden
	}
	if project.Status != models.ProjectInProgress {
		return nil, ErrInvalidState
	}
	if project.FreelancerID == nil {
		return nil, ErrInvalidState
	}

	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ErrInvalidInput
	}

	amount := project.Budget
	if finalAmount != nil {
		if *finalAmount <= 0 {
			return nil, ErrInvalidInput
		}
		amount = *finalAmount
	}

	freelancerID := *project.FreelancerID
	now := time.Now()

	var review *models.Review

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		// Transisi kondisional: status tidak pernah mundur
		result := tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", projectID, models.ProjectInProgress).
			Updates(map[string]interface{}{
				"status":       models.ProjectCompleted,
				"completed_at": now,
				"final_amount": amount,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidState
		}

		// Review hanya dibuat kalau rating dan teks dua-duanya ada
		if rating != nil && reviewText != nil {
			r := models.Review{
				ProjectID:    projectID,
				ClientID:     callerID,
				FreelancerID: freelancerID,
				Rating:       *rating,
				Comment:      *reviewText,
			}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			review = &r

			// Rata-rata aritmetika sederhana atas semua review freelancer
			var stats struct {
				Avg   float64
				Count int64
			}
			if err := tx.Model(&models.Review{}).
				Select("AVG(rating) as avg, COUNT(*) as count").
				Where("freelancer_id = ?", freelancerID).
				Scan(&stats).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).
				Where("id = ?", freelancerID).
				Updates(map[string]interface{}{
					"rating":       stats.Avg,
					"rating_count": stats.Count,
				}).Error; err != nil {
				return err
			}
		}

		// Statistik freelancer
		if err := tx.Model(&models.User{}).
			Where("id = ?", freelancerID).
			Updates(map[string]interface{}{
				"completed_projects": gorm.Expr("completed_projects + 1"),
				"total_earnings":     gorm.Expr("total_earnings + ?", amount),
			}).Error; err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := ps.db.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	var effects []SideEffect

	effects = append(effects, ps.notifier.Notify(freelancerID, models.NotifProjectCompleted,
		"Project completed",
		fmt.Sprintf("Project %q was marked completed. Rp %s has been recorded as earnings.",
			project.Title, utils.FormatCurrency(amount)),
		map[string]interface{}{"project_id": projectID, "final_amount": amount}))

	// Lepas dana escrow bila project ini punya pembayaran sukses
	if ps.payments != nil {
		effects = append(effects, ps.payments.ReleaseEscrow(projectID, freelancerID))
	}

	events.BroadcastProjectUpdate(events.EventProjectCompleted, project)

	return &CompleteProjectResult{
		Project:     project,
		Review:      review,
		SideEffects: effects,
	}, nil
}

// PublishProject memindahkan draft -> published oleh pemiliknya.
func (ps *ProjectService) PublishProject(projectID, callerID uint) (*models.Project, error) {
	var project models.Project
	if err := ps.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if project.ClientID != callerID {
		return nil, ErrForbidden
	}

	result := ps.db.Model(&models.Project{}).
		Where("id = ? AND status = ?", projectID, models.ProjectDraft).
		Update("status", models.ProjectPublished)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	project.Status = models.ProjectPublished
	events.BroadcastProjectUpdate(events.EventProjectPublished, project)

	return &project, nil
}

// CancelProject hanya diizinkan sebelum ada freelancer terpilih
// (draft atau published).
func (ps *ProjectService) CancelProject(projectID, callerID uint) (*models.Project, error) {
	var project models.Project
	if err := ps.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if project.ClientID != callerID {
		return nil, ErrForbidden
	}

	result := ps.db.Model(&models.Project{}).
		Where("id = ? AND status IN ?", projectID,
			[]models.ProjectStatus{models.ProjectDraft, models.ProjectPublished}).
		Update("status", models.ProjectCancelled)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	project.Status = models.ProjectCancelled
	events.BroadcastProjectUpdate(events.EventProjectCancelled, project)

	return &project, nil
}
