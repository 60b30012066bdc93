package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	ws "github.com/ikkim/hwawon-backend/internal/websocket"
	"github.com/ikkim/hwawon-backend/pkg/util"
)

// LedgerStreamController 포인트 변동 실시간 알림 (WebSocket)
type LedgerStreamController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewLedgerStreamController(hub *ws.Hub, allowedOrigins []string) *LedgerStreamController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &LedgerStreamController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// 브라우저 외 클라이언트는 Origin 이 없다
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Stream WebSocket 연결 처리
// GET /api/v1/admin/ws/ledger?phone= (운영 키 필요)
func (ctrl *LedgerStreamController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	phone, ok := normalizedPhoneQuery(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, phone)
	client.LastResetTime = time.Now()
	ctrl.hub.Register(client)

	// goroutine으로 읽기/쓰기 시작
	go client.WritePump()
	go client.ReadPump()

	log.Info("Ledger stream connected", map[string]interface{}{
		"phone": util.MaskPhone(phone),
	})
}
