package models

import "time"

// Payment merepresentasikan dana escrow client untuk satu project.
type Payment struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	ProjectID   uint    `json:"project_id" gorm:"not null;index"`
	Project     Project `json:"-" gorm:"foreignKey:ProjectID"`
	ClientID    uint    `json:"client_id" gorm:"not null"`
	Amount      float64 `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status      string  `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ReferenceID string  `json:"reference_id" gorm:"type:varchar(64);uniqueIndex"`

	SnapToken  string `json:"snap_token"`  // Token Snap Midtrans
	PaymentURL string `json:"payment_url"` // URL redirect checkout

	PaymentTime *time.Time `json:"payment_time"` // Waktu pembayaran sukses
	ReleasedAt  *time.Time `json:"released_at"`  // Waktu dana dilepas ke freelancer
	ExpiredAt   *time.Time `json:"expired_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
