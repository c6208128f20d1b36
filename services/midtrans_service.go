package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransConfig holds Midtrans configuration
type MidtransConfig struct {
	ServerKey     string
	ClientKey     string
	IsProduction  bool
	MerchantName  string
	MerchantEmail string
}

// MidtransService membungkus Snap API untuk checkout escrow dan
// verifikasi signature webhook.
type MidtransService struct {
	config *MidtransConfig
	client snap.Client
}

var (
	midtransService *MidtransService
	midtransOnce    sync.Once
)

// GetMidtransService returns singleton instance of MidtransService
func GetMidtransService() *MidtransService {
	midtransOnce.Do(func() {
		serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
		clientKey := os.Getenv("MIDTRANS_CLIENT_KEY")
		isProduction := os.Getenv("MIDTRANS_ENV") == "production"
		merchantName := os.Getenv("MIDTRANS_MERCHANT_NAME")
		merchantEmail := os.Getenv("MIDTRANS_MERCHANT_EMAIL")

		if merchantName == "" {
			merchantName = "Freelance Market"
		}
		if merchantEmail == "" {
			merchantEmail = "payments@freelancemarket.example"
		}

		env := midtrans.Sandbox
		if isProduction {
			env = midtrans.Production
		}

		var client snap.Client
		client.New(serverKey, env)

		midtransService = &MidtransService{
			config: &MidtransConfig{
				ServerKey:     serverKey,
				ClientKey:     clientKey,
				IsProduction:  isProduction,
				MerchantName:  merchantName,
				MerchantEmail: merchantEmail,
			},
			client: client,
		}
	})
	return midtransService
}

// ValidateConfig validates Midtrans configuration
func (ms *MidtransService) ValidateConfig() error {
	if ms.config.ServerKey == "" {
		return fmt.Errorf("MIDTRANS_SERVER_KEY is not set")
	}
	if ms.config.ClientKey == "" {
		return fmt.Errorf("MIDTRANS_CLIENT_KEY is not set")
	}
	return nil
}

// CreateSnapTransaction membuat transaksi Snap untuk satu escrow.
func (ms *MidtransService) CreateSnapTransaction(referenceID string, amount float64, customerName, customerEmail string) (*snap.Response, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  referenceID,
			GrossAmt: int64(amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customerName,
			Email: customerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    referenceID,
				Price: int64(amount),
				Qty:   1,
				Name:  "Project escrow payment",
			},
		},
	}

	resp, snapErr := ms.client.CreateTransaction(req)
	if snapErr != nil {
		return nil, snapErr
	}
	return resp, nil
}

// VerifySignature mencocokkan signature webhook:
// sha512(order_id + status_code + gross_amount + server_key).
func (ms *MidtransService) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	payload := orderID + statusCode + grossAmount + ms.config.ServerKey
	hash := sha512.Sum512([]byte(payload))
	expected := hex.EncodeToString(hash[:])
	return expected == signatureKey
}
