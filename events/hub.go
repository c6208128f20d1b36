package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/freelance-market/models"
	"github.com/yeremiapane/freelance-market/utils"
)

// Event types
const (
	EventBidSubmitted     = "bid_submitted"
	EventBidAccepted      = "bid_accepted"
	EventBidRejected      = "bid_rejected"
	EventBidWithdrawn     = "bid_withdrawn"
	EventProjectPublished = "project_published"
	EventProjectStarted   = "project_started"
	EventProjectCompleted = "project_completed"
	EventProjectCancelled = "project_cancelled"
	EventPaymentPending   = "payment_pending"
	EventPaymentSuccess   = "payment_success"
	EventPaymentReleased  = "payment_released"
	EventNotification     = "notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client websocket (client, freelancer, admin)
// beserta user id-nya untuk pengiriman tertarget.
type Hub struct {
	clients map[*websocket.Conn]uint // conn -> user id
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]uint),
}

// RegisterClient -> menambahkan connection ke set dengan user id
func RegisterClient(conn *websocket.Conn, userID uint) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = userID
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastProjectUpdate -> menyiarkan perubahan project ke semua client
func BroadcastProjectUpdate(event string, project models.Project) {
	broadcast(Message{
		Event: event,
		Data:  project,
	})
}

// BroadcastBidUpdate -> menyiarkan perubahan bid
func BroadcastBidUpdate(event string, bid models.Bid) {
	broadcast(Message{
		Event: event,
		Data:  bid,
	})
}

// BroadcastPaymentUpdate -> update status pembayaran escrow
func BroadcastPaymentUpdate(event string, payment models.Payment) {
	broadcast(Message{
		Event: event,
		Data:  payment,
	})
}

// SendNotification -> kirim notifikasi hanya ke connection milik user tujuan
func SendNotification(userID uint, notif models.Notification) {
	msg := Message{
		Event: EventNotification,
		Data:  notif,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn, uid := range hub.clients {
		if uid != userID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("Error sending notification to user %d: %v", userID, err)
			}
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}

func broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Connection mati, buang dari set
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}
