// websocket.go - WebSocket stream of wizard snapshots
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/observability"
)

// WebSocket message types
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeSnapshot  = "snapshot"
	MsgTypePong      = "pong"
	MsgTypeClosed    = "closed"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// WSMessage is the envelope of every WebSocket frame
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocketHandler streams snapshots of one wizard per connection
type WebSocketHandler struct {
	sessions SessionManager
	upgrader websocket.Upgrader
	logger   observability.Logger
}

// NewWebSocketHandler creates a new WebSocket stream handler.
// maxMessageKB bounds inbound frames; zero means 64KB.
func NewWebSocketHandler(sessions SessionManager, maxMessageKB int, logger observability.Logger) *WebSocketHandler {
	if logger == nil {
		logger = observability.Discard()
	}
	if maxMessageKB <= 0 {
		maxMessageKB = 64
	}
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  maxMessageKB * 1024,
			WriteBufferSize: maxMessageKB * 1024,
		},
		logger: logger.WithComponent("websocket"),
	}
}

// HandleWizardStream upgrades the connection and pushes a snapshot after
// every state change until the client leaves or the session ends.
func (wsh *WebSocketHandler) HandleWizardStream(c echo.Context) error {
	id := c.Param("sessionId")
	w, err := wsh.sessions.Get(id)
	if err != nil {
		return fromDomainError(err, id)
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	updates, unsubscribe := w.Subscribe()
	defer unsubscribe()

	wsh.logger.Debug("client connected", "session", id)

	// Reads run on their own goroutine; all writes stay on this one.
	pings := make(chan struct{}, 1)
	gone := make(chan struct{})
	go wsh.readLoop(ws, id, pings, gone)

	keepAlive := time.NewTicker(wsPingPeriod)
	defer keepAlive.Stop()

	if err := wsh.send(ws, WSMessage{Type: MsgTypeConnected, ID: id}); err != nil {
		return nil
	}
	if err := wsh.sendSnapshot(ws, w.Snapshot()); err != nil {
		return nil
	}

	for {
		select {
		case <-gone:
			wsh.logger.Debug("client disconnected", "session", id)
			return nil
		case <-pings:
			wsh.sessions.Touch(id)
			if err := wsh.send(ws, WSMessage{Type: MsgTypePong}); err != nil {
				return nil
			}
		case <-keepAlive.C:
			ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case snap, ok := <-updates:
			if !ok {
				wsh.send(ws, WSMessage{Type: MsgTypeClosed, ID: id})
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(wsWriteWait))
				return nil
			}
			wsh.sessions.Touch(id)
			if err := wsh.sendSnapshot(ws, snap); err != nil {
				return nil
			}
		}
	}
}

func (wsh *WebSocketHandler) readLoop(ws *websocket.Conn, id string, pings chan<- struct{}, gone chan<- struct{}) {
	defer close(gone)

	ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.logger.Debug("connection error", "session", id, "error", err)
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(wsPongWait))

		if msg.Type == MsgTypePing {
			select {
			case pings <- struct{}{}:
			default:
			}
		}
	}
}

func (wsh *WebSocketHandler) sendSnapshot(ws *websocket.Conn, snap models.WizardSnapshot) error {
	return wsh.send(ws, WSMessage{
		Type:    MsgTypeSnapshot,
		ID:      snap.SessionID,
		Payload: mustJSON(snap),
	})
}

func (wsh *WebSocketHandler) send(ws *websocket.Conn, msg WSMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return ws.WriteJSON(msg)
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
