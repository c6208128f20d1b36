package models

import "time"

type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectPublished  ProjectStatus = "published"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectDraft, ProjectPublished, ProjectInProgress, ProjectCompleted, ProjectCancelled:
		return true
	default:
		return false
	}
}

// Project adalah pekerjaan yang dibuka client untuk freelancer.
// FreelancerID dan AcceptedBidID diisi bersamaan saat status pindah ke in_progress.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ClientID    uint          `gorm:"not null;index" json:"client_id"`
	Client      User          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Budget      float64       `gorm:"type:decimal(12,2);not null" json:"budget"`
	FinalAmount float64       `gorm:"type:decimal(12,2);default:0" json:"final_amount"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`

	FreelancerID  *uint      `gorm:"index" json:"freelancer_id,omitempty"`
	Freelancer    *User      `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
	AcceptedBidID *uint      `json:"accepted_bid_id,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Bids []Bid `gorm:"foreignKey:ProjectID" json:"bids,omitempty"`
}
