package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-tracker-api/internal/service"
)

const (
	streamWriteWait = 10 * time.Second
	streamPingEvery = 30 * time.Second
)

// StreamHandler upgrades clients to a WebSocket and forwards store events
// so they can re-read state without polling.
type StreamHandler struct {
	events   *service.EventBus
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler builds a new handler.
func NewStreamHandler(events *service.EventBus, logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{
		events: events,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// CORS is enforced by middleware in front of the upgrade.
				return true
			},
		},
	}
}

// Events godoc
// @Summary Stream store change events over WebSocket
// @Tags Events
// @Router /events [get]
func (h *StreamHandler) Events(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch, cancel := h.events.Subscribe()
	defer cancel()

	// Reader goroutine: we never expect client messages, but reading is
	// what surfaces close frames and dead connections.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
