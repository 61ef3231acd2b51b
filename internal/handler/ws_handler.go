package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/exam"
	"github.com/tikulab/tiku-backend/internal/service"
	ws "github.com/tikulab/tiku-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty origin list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live session events (countdown ticks, pause state,
// the final submitted notification) over a WebSocket.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:id/stream
// Pushes one tick per second while the timer runs; the stream ends with
// a submitted event. The client may also submit through the socket.
func (h *WSHandler) SessionStream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.sessionService.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	// Both the forwarder goroutine and the reader loop write to the
	// socket, so all writes go through the locked wrapper.
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", id.String()).Logger()
	wsLog.Info().Msg("Stream connected")

	events, cancel := session.Subscribe()
	defer cancel()

	// Writer: forward engine events until the subscription closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			payload := ws.StreamPayload{
				Event:         streamEvent(ev.Type),
				TimeRemaining: ev.TimeRemaining,
			}
			if ev.Type == exam.EventSubmitted {
				payload.HistoryID = ev.HistoryID.String()
			}
			if err := conn.WriteTyped(payload); err != nil {
				wsLog.Debug().Err(err).Msg("Stream write failed")
				return
			}
		}
	}()

	// Reader: handle client actions until the peer goes away or the
	// subscription drains out.
	for {
		select {
		case <-done:
			return
		default:
		}

		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionSubmit:
			if _, err := h.sessionService.Submit(context.Background(), id); err != nil {
				wsLog.Error().Err(err).Msg("Submit over stream failed")
				_ = conn.WriteError("submit failed")
			}
			// The submitted event reaches the client via the stream.
		default:
			_ = conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

func streamEvent(t exam.EventType) ws.Event {
	switch t {
	case exam.EventTick:
		return ws.EventTick
	case exam.EventPaused:
		return ws.EventPaused
	case exam.EventResumed:
		return ws.EventResumed
	case exam.EventSubmitted:
		return ws.EventSubmitted
	default:
		return ws.Event(t)
	}
}
