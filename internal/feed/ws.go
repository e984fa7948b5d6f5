package feed

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// WriteWait bounds a single write to a viewer.
	WriteWait = 10 * time.Second
	// PongWait is how long a viewer may stay silent.
	PongWait = 60 * time.Second
	// PingPeriod must be shorter than PongWait.
	PingPeriod = 30 * time.Second
	// MaxMessageSize caps inbound frames; viewers only send control frames.
	MaxMessageSize = 512
)

// WSHandler upgrades HTTP requests to websocket viewers of a Hub.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWSHandler builds a handler. An empty allowedOrigins list, or one
// containing "*", accepts any origin.
func NewWSHandler(hub *Hub, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	sub := h.hub.Subscribe()
	v := &viewer{conn: conn, sub: sub, done: make(chan struct{}), log: h.log}
	go v.writePump()
	v.readPump()
}

type viewer struct {
	conn *websocket.Conn
	sub  *Subscription
	done chan struct{}
	log  zerolog.Logger
}

// readPump drains inbound frames so pongs and close frames are processed.
// It returns when the connection fails and then tears the viewer down.
func (v *viewer) readPump() {
	defer func() {
		close(v.done)
		v.sub.Close()
	}()
	v.conn.SetReadLimit(MaxMessageSize)
	_ = v.conn.SetReadDeadline(time.Now().Add(PongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(PongWait))
	})
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				v.log.Debug().Err(err).Msg("feed viewer read error")
			}
			return
		}
	}
}

func (v *viewer) writePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		_ = v.conn.Close()
	}()
	for {
		select {
		case <-v.done:
			return
		case ev, ok := <-v.sub.Events():
			_ = v.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				_ = v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			msg, err := json.Marshal(ev)
			if err != nil {
				v.log.Error().Err(err).Str("event", ev.Event).Msg("feed event encode failed")
				continue
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
