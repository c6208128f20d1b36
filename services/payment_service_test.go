package services

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/freelance-market/models"
)

// startEscrow menjalankan accept bid lalu membuat escrow tanpa gateway.
func startEscrow(t *testing.T, f *marketplaceFixture) *models.Payment {
	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	payment, err := f.payments.CreateEscrow(f.project.ID, f.client.ID)
	assert.NoError(t, err)
	return payment
}

func TestCreateEscrowFollowsAcceptedBid(t *testing.T) {
	f := newMarketplaceFixture(t)
	payment := startEscrow(t, f)

	assert.Equal(t, PaymentStatusPending, payment.Status)
	assert.Equal(t, f.bid1.Amount, payment.Amount)
	assert.Contains(t, payment.ReferenceID, "ESCROW-")
	assert.NotNil(t, payment.ExpiredAt)
}

func TestCreateEscrowGuards(t *testing.T) {
	f := newMarketplaceFixture(t)

	// Project masih published
	_, err := f.payments.CreateEscrow(f.project.ID, f.client.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	startEscrow(t, f)

	// Escrow kedua untuk project yang sama ditolak
	_, err = f.payments.CreateEscrow(f.project.ID, f.client.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// Bukan pemilik project
	_, err = f.payments.CreateEscrow(f.project.ID, f.freelancer1.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPaymentCallbackSettlement(t *testing.T) {
	f := newMarketplaceFixture(t)
	payment := startEscrow(t, f)

	updated, err := f.payments.HandleCallback(payment.ReferenceID, "200", "4500000.00", "settlement", "")
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, updated.Status)
	assert.NotNil(t, updated.PaymentTime)

	// Callback ganda tidak mengubah status lagi
	updated, err = f.payments.HandleCallback(payment.ReferenceID, "200", "4500000.00", "expire", "")
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, updated.Status)
}

func TestPaymentCallbackUnknownReference(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.payments.HandleCallback("ESCROW-0-missing", "200", "0", "settlement", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReleaseEscrowOnCompletion(t *testing.T) {
	f := newMarketplaceFixture(t)
	payment := startEscrow(t, f)

	_, err := f.payments.HandleCallback(payment.ReferenceID, "200", "4500000.00", "settlement", "")
	assert.NoError(t, err)

	result, err := f.projects.CompleteProject(f.project.ID, f.client.ID, nil, nil, nil)
	assert.NoError(t, err)

	released := false
	for _, effect := range result.SideEffects {
		if effect.Kind == "escrow_release" {
			released = effect.OK
		}
	}
	assert.True(t, released)

	var stored models.Payment
	f.db.First(&stored, payment.ID)
	assert.Equal(t, PaymentStatusReleased, stored.Status)
	assert.NotNil(t, stored.ReleasedAt)

	// Freelancer diberi tahu dananya dilepas
	var notif models.Notification
	err = f.db.Where("user_id = ? AND type = ?", f.freelancer1.ID, models.NotifPaymentReleased).First(&notif).Error
	assert.NoError(t, err)
}

func TestReleaseEscrowWithoutFunding(t *testing.T) {
	f := newMarketplaceFixture(t)

	_, err := f.projects.AcceptBid(f.project.ID, f.bid1.ID, f.client.ID)
	assert.NoError(t, err)

	// Tanpa pembayaran sukses, release jadi side effect gagal,
	// tapi penyelesaian project tetap jalan
	result, err := f.projects.CompleteProject(f.project.ID, f.client.ID, nil, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.ProjectCompleted, result.Project.Status)

	for _, effect := range result.SideEffects {
		if effect.Kind == "escrow_release" {
			assert.False(t, effect.OK)
		}
	}
}

func TestCheckExpiredPayments(t *testing.T) {
	f := newMarketplaceFixture(t)
	payment := startEscrow(t, f)

	// Pembayaran pending lain yang belum kadaluarsa
	future := time.Now().Add(time.Hour)
	fresh := models.Payment{
		ProjectID:   f.project.ID,
		ClientID:    f.client.ID,
		Amount:      100000,
		Status:      PaymentStatusPending,
		ReferenceID: "ESCROW-fresh",
		ExpiredAt:   &future,
	}
	f.db.Create(&fresh)

	// Mundurkan ExpiredAt escrow pertama ke masa lalu
	past := time.Now().Add(-time.Hour)
	f.db.Model(&models.Payment{}).Where("id = ?", payment.ID).Update("expired_at", past)

	f.payments.CheckExpiredPayments()

	var stored models.Payment
	f.db.First(&stored, payment.ID)
	assert.Equal(t, PaymentStatusExpired, stored.Status)

	stored = models.Payment{}
	f.db.First(&stored, fresh.ID)
	assert.Equal(t, PaymentStatusPending, stored.Status)
}

func TestVerifySignature(t *testing.T) {
	ms := &MidtransService{config: &MidtransConfig{ServerKey: "secret-key"}}

	// Signature Midtrans: sha512(order_id + status_code + gross_amount + server_key)
	raw := sha512.Sum512([]byte("ORDER-1" + "200" + "10000.00" + "secret-key"))
	signature := hex.EncodeToString(raw[:])

	assert.True(t, ms.VerifySignature("ORDER-1", "200", "10000.00", signature))
	assert.False(t, ms.VerifySignature("ORDER-1", "200", "10000.00", "wrong"))
	assert.False(t, ms.VerifySignature("ORDER-2", "200", "10000.00", signature))
}
