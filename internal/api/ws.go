package api

import (
	"net/http"

	"referral_rewards_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket streams rollup events (week/month closed) to a connected
// dashboard until the client goes away.
func (r *standingsRoutes) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	subID, events := r.notifier.Subscribe()

	// Reader goroutine: its only job is to notice the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			r.notifier.Unsubscribe(subID)
			conn.Close()
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				out, err := json.Marshal(event)
				if err != nil {
					log.Error("failed to marshal rollup event", zap.Error(err))
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
					log.Debug("websocket write failed", zap.Error(err))
					return
				}
			case <-done:
				return
			}
		}
	}()
}
