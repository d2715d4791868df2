package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
	"wayfinder-route-service/internal/adapters/location"
	"wayfinder-route-service/internal/api/dto"
	"wayfinder-route-service/internal/domain"
	"wayfinder-route-service/internal/platform/logger"
	"wayfinder-route-service/internal/sessions"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
	writeWait  = 10 * time.Second
)

// StreamHandler pushes the session view over a WebSocket after every engine
// change and takes position frames from the device on the same socket.
type StreamHandler struct {
	sessions *sessions.Manager
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewStreamHandler(m *sessions.Manager, l *zap.Logger) *StreamHandler {
	return &StreamHandler{
		sessions: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.OrNop(l),
	}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	s, ok := lookupSession(c, h.sessions)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("session_id", s.ID), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	snapshots, unwatch := s.Watch()
	defer unwatch()

	replies := make(chan dto.StreamEvent, 8)
	go h.read(ctx, cancel, conn, s, replies)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case snap, ok := <-snapshots:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(writeWait))
				return
			}
			view := dto.SessionFromView(s.ViewOf(snap))
			if err := h.write(conn, dto.StreamEvent{Type: "session", Session: &view}); err != nil {
				return
			}

		case reply := <-replies:
			if err := h.write(conn, reply); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, v dto.StreamEvent) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// read owns the read side of conn. Any read error ends the stream.
func (h *StreamHandler) read(
	ctx context.Context,
	cancel context.CancelFunc,
	conn *websocket.Conn,
	s *sessions.Session,
	replies chan<- dto.StreamEvent,
) {
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg dto.StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", zap.String("session_id", s.ID), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var reply dto.StreamEvent
		switch msg.Type {
		case "position":
			accepted, err := s.PushPosition(domain.Position{Lat: msg.Lat, Lng: msg.Lng, RecordedAt: time.Now().UTC()})
			reply = dto.StreamEvent{Type: "position", Accepted: &accepted}
			switch {
			case errors.Is(err, domain.ErrPermissionDenied):
				reply.Error = "location permission denied"
			case errors.Is(err, location.ErrInvalidPosition):
				reply.Error = "invalid position"
			case err != nil:
				reply.Error = "internal error"
			}
		default:
			reply = dto.StreamEvent{Type: "error", Error: "unknown message type"}
		}

		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}
