package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/pkg/logger"
)

// ClientMessage 클라이언트로부터 받은 메시지
type ClientMessage struct {
	Type string `json:"type"` // ping
}

// Client WebSocket 클라이언트 (고객 휴대폰 번호 단위 구독)
type Client struct {
	Hub           *Hub
	Conn          *Conn
	Phone         string
	Send          chan []byte
	MessageCount  int       // 최근 1초간 받은 메시지 수
	LastResetTime time.Time // 마지막 카운터 리셋 시간
	RateMu        sync.Mutex
}

// NewClient creates a client with a buffered send queue.
func NewClient(hub *Hub, conn *Conn, phone string) *Client {
	return &Client{
		Hub:   hub,
		Conn:  conn,
		Phone: phone,
		Send:  make(chan []byte, 256),
	}
}

// Hub WebSocket 연결 관리자
type Hub struct {
	// 등록된 클라이언트들 (Phone -> []*Client - 멀티 디바이스 지원)
	clients map[string][]*Client

	// 클라이언트 등록
	register chan *Client

	// 클라이언트 등록 해제
	unregister chan *Client

	// 메시지 브로드캐스트
	broadcast chan *BroadcastMessage

	done chan struct{}

	mu sync.RWMutex
}

// BroadcastMessage 브로드캐스트 메시지
type BroadcastMessage struct {
	Phone   string
	Message []byte
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run Hub 실행
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.Phone] = append(h.clients[client.Phone], client)
			sessions := len(h.clients[client.Phone])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"phone":          client.Phone,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.Phone]; ok {
				newList := make([]*Client, 0, len(clientList))
				removed := false
				for _, c := range clientList {
					if c == client {
						removed = true
						continue
					}
					newList = append(newList, c)
				}

				if len(newList) == 0 {
					delete(h.clients, client.Phone)
				} else {
					h.clients[client.Phone] = newList
				}

				if removed {
					close(client.Send)
				}
			}
			remaining := len(h.clients[client.Phone])
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"phone":              client.Phone,
				"remaining_sessions": remaining,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[message.Phone] {
				select {
				case client.Send <- message.Message:
				default:
					// Send 채널이 막혀있음 - 비동기로 정리
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"phone": message.Phone,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop Hub 종료
func (h *Hub) Stop() {
	close(h.done)
}

// SendToCustomer 특정 고객의 모든 세션에 메시지 전송
func (h *Hub) SendToCustomer(phone string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{Phone: phone, Message: data}:
		return nil
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"phone": phone,
		})
		return nil // 메시지 손실 허용 (원장 상태에 영향 없음)
	}
}

// Publish implements events.Publisher by pushing each event to the customer's sessions.
func (h *Hub) Publish(_ context.Context, evs ...events.LedgerEvent) error {
	for _, ev := range evs {
		if err := h.SendToCustomer(ev.CustomerPhone, ev); err != nil {
			return err
		}
	}
	return nil
}

// Register 클라이언트 등록
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsCustomerOnline 고객 접속 여부 확인
func (h *Hub) IsCustomerOnline(phone string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[phone]
	return ok
}

// HandleClientMessage 클라이언트 메시지 처리
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	// Rate limiting 체크
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"phone": client.Phone,
			"count": count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"phone": client.Phone,
			"error": err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		data, _ := json.Marshal(map[string]interface{}{
			"type": "pong",
			"at":   now.UTC(),
		})
		select {
		case client.Send <- data:
		default:
		}
	}
}
