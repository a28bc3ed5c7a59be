package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"mfchat/internal/chat"
	"mfchat/pkg/types"
)

// WebSocket upgrader with permissive origin checking
// FUNCTIONAL DISCOVERY: The chat client is served from the same process but
// may also run from file:// during development, so all origins are allowed
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Options tunes connection lifecycle timing
type Options struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	WriteBuffer  int
}

// Handler upgrades HTTP requests and pumps inbound events into the pipeline
// ARCHITECTURAL DISCOVERY: The handler owns framing and lifecycle only; every
// decoded event goes straight to the chat service, which holds all the rules
type Handler struct {
	registry *Registry
	service  *chat.Service
	opts     Options
}

// NewHandler creates a WebSocket handler
func NewHandler(registry *Registry, service *chat.Service, opts Options) *Handler {
	return &Handler{
		registry: registry,
		service:  service,
		opts:     opts,
	}
}

// HandleWebSocket accepts a client connection on /ws
// FUNCTIONAL DISCOVERY: No credentials at upgrade time — a connection starts
// Unauthenticated and logs in over the socket, like the original transport
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := NewConnection(wsConn, h.opts.WriteBuffer, h.opts.WriteTimeout)
	if err := h.registry.Add(conn); err != nil {
		log.Printf("Failed to register connection: %v", err)
		_ = conn.Close()
		return
	}

	log.Printf("User connected")

	go h.handleConnection(conn)
}

// handleConnection runs the read pump and heartbeat for one connection
// TECHNICAL DISCOVERY: Read deadline refreshed on every pong keeps dead
// sockets from lingering in the registry as phantom broadcast targets
func (h *Handler) handleConnection(conn *Connection) {
	defer func() {
		h.registry.Remove(conn)
		h.service.Disconnect(conn)
		_ = conn.Close()
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	})

	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(h.opts.WriteTimeout)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		h.dispatch(conn, data)
	}
}

// dispatch decodes one frame and routes it to the matching pipeline method
// ARCHITECTURAL DISCOVERY: The switch over event names is the tagged-variant
// boundary — unknown events and malformed payloads are logged and dropped,
// never surfaced to the client
func (h *Handler) dispatch(conn *Connection, frame []byte) {
	env, err := decodeEnvelope(frame)
	if err != nil {
		log.Printf("Ignoring frame from connection %s: %v", conn.ID(), err)
		return
	}

	switch env.Event {
	case types.EventLogin:
		var req types.LoginRequest
		if !decodePayload(env, &req, conn) {
			return
		}
		h.service.Login(conn, req)

	case types.EventMessage:
		var req types.MessageRequest
		if !decodePayload(env, &req, conn) {
			return
		}
		h.service.SendMessage(conn, req)

	case types.EventChangeNickname:
		var req types.NicknameChangeRequest
		if !decodePayload(env, &req, conn) {
			return
		}
		h.service.ChangeNickname(req)

	case types.EventMuteUser:
		var req types.MuteRequest
		if !decodePayload(env, &req, conn) {
			return
		}
		h.service.MuteUser(req)

	case types.EventBanUser:
		var req types.BanRequest
		if !decodePayload(env, &req, conn) {
			return
		}
		h.service.BanUser(req)

	case types.EventClearMessages:
		h.service.ClearMessages()

	default:
		log.Printf("Ignoring unknown event %q from connection %s", env.Event, conn.ID())
	}
}

// decodePayload unmarshals an event payload, logging and dropping on failure
func decodePayload(env *Envelope, dst interface{}, conn *Connection) bool {
	if len(env.Data) == 0 {
		// An absent payload decodes as the zero value, matching clients
		// that omit optional fields entirely
		return true
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		log.Printf("Ignoring %s event from connection %s: malformed payload: %v", env.Event, conn.ID(), err)
		return false
	}
	return true
}
