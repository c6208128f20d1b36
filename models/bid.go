package models

import "time"

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidAccepted, BidRejected, BidWithdrawn:
		return true
	default:
		return false
	}
}

// Terminal berarti bid tidak boleh bertransisi lagi.
func (s BidStatus) Terminal() bool {
	return s != BidPending
}

// LiveBidFlag -> nilai kolom Active untuk bid yang belum withdrawn.
func LiveBidFlag() *int {
	one := 1
	return &one
}

// Bid adalah penawaran harga/waktu dari freelancer untuk satu project.
// Maksimal satu bid non-withdrawn per (project, freelancer), dan maksimal
// satu bid accepted per project.
//
// Active bernilai 1 selama bid belum withdrawn dan NULL sesudahnya;
// unique index (project_id, freelancer_id, active) menjaga invariannya
// di level database (NULL tidak saling bentrok).
type Bid struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"not null;index;uniqueIndex:uniq_live_bid" json:"project_id"`
	Project      Project   `gorm:"foreignKey:ProjectID" json:"-"`
	FreelancerID uint      `gorm:"not null;index;uniqueIndex:uniq_live_bid" json:"freelancer_id"`
	Freelancer   User      `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	Amount       float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	DeliveryDays int       `gorm:"not null" json:"delivery_days"`
	CoverLetter  string    `gorm:"type:text" json:"cover_letter"`
	Status       BidStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Active       *int      `gorm:"uniqueIndex:uniq_live_bid" json:"-"`

	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}
