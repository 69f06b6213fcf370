package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"lockreact/internal/game"
	"lockreact/pkg/realtime"
)

// SocketConfig tunes the WebSocket gateway.
type SocketConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
}

func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Inbound command types.
const (
	commandInput = "input"
	commandPause = "pause"
	commandReset = "reset"
)

type socketCommand struct {
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
}

type socketFrame struct {
	Event    realtime.Event `json:"event"`
	Snapshot game.Snapshot  `json:"snapshot"`
}

type socketConn struct {
	id   string
	conn *websocket.Conn
	sess *game.Session
	cfg  SocketConfig
}

func (h *SessionHandler) socket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	hub, ok := h.store.Broadcaster(sess.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("failed to upgrade WebSocket connection")
		return
	}

	c := &socketConn{
		id:   uuid.NewString(),
		conn: conn,
		sess: sess,
		cfg:  h.opts.Socket,
	}
	sub := hub.Subscribe()
	h.store.EnsureTickLoop(sess.ID)
	log.Info().
		Str("connection_id", c.id).
		Str("session_id", sess.ID).
		Msg("WebSocket connection established")

	go c.writePump(sub)
	c.readPump()
	hub.Unsubscribe(sub)

	log.Info().
		Str("connection_id", c.id).
		Str("session_id", sess.ID).
		Msg("WebSocket connection closed")
}

// writePump owns all writes: the initial snapshot, one snapshot per event and pings.
func (c *socketConn) writePump(sub chan realtime.Event) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	if err := c.writeSnapshot(game.EventRound); err != nil {
		return
	}
	for {
		select {
		case event, ok := <-sub:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.writeSnapshot(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("connection_id", c.id).Msg("failed to send ping")
				return
			}
		}
	}
}

func (c *socketConn) writeSnapshot(event realtime.Event) error {
	payload, err := json.Marshal(socketFrame{Event: event, Snapshot: c.sess.Snapshot()})
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.id).Msg("failed to marshal snapshot")
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Debug().Err(err).Str("connection_id", c.id).Msg("failed to write message to WebSocket")
		return err
	}
	return nil
}

func (c *socketConn) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("connection_id", c.id).Msg("unexpected WebSocket close error")
			}
			return
		}
		c.handleCommand(message)
		_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
}

func (c *socketConn) handleCommand(message []byte) {
	var cmd socketCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		log.Debug().Err(err).Str("connection_id", c.id).Msg("ignoring malformed command")
		return
	}
	switch cmd.Type {
	case commandInput:
		c.sess.OnInput(cmd.Source)
	case commandPause:
		c.sess.TogglePause()
	case commandReset:
		c.sess.Reset()
	default:
		log.Debug().Str("connection_id", c.id).Str("type", cmd.Type).Msg("ignoring unknown command")
	}
}
