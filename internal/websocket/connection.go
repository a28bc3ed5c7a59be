package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mfchat/pkg/types"
)

// Connection wraps one client socket and implements interfaces.Session
// ARCHITECTURAL DISCOVERY: WebSocket writes must be serialized — a single
// writer goroutine drains writeCh so broadcasts and unicasts from any
// goroutine never race on the underlying socket
type Connection struct {
	id        string
	conn      *websocket.Conn
	writeCh   chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	mu        sync.RWMutex // protects identity fields

	nickname      string // set after successful login
	authenticated bool
}

// NewConnection creates a connection wrapper and starts its writer goroutine
// TECHNICAL DISCOVERY: Connections get a UUID because several anonymous
// sockets can exist before any login — nicknames cannot key the registry
func NewConnection(conn *websocket.Conn, writeBuffer int, writeTimeout time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:      uuid.New().String(),
		conn:    conn,
		writeCh: make(chan []byte, writeBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.writeLoop(writeTimeout)

	return c
}

// ID returns the connection's registry key
func (c *Connection) ID() string {
	return c.id
}

// writeLoop is the single writer for the underlying socket
func (c *Connection) writeLoop(writeTimeout time.Duration) {
	for {
		select {
		case data, ok := <-c.writeCh:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// emit frames and queues one outbound event
// FUNCTIONAL DISCOVERY: A full write buffer drops the event for this client
// rather than blocking the broadcaster — one slow reader must not stall the
// delivery loop for everyone else
func (c *Connection) emit(event string, payload interface{}) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}

	select {
	case c.writeCh <- frame:
	case <-c.ctx.Done():
	default:
		log.Printf("Dropping %s event for connection %s: write buffer full", event, c.id)
	}
}

// Close shuts the connection down exactly once
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Authenticate binds the session to a nickname after successful login
func (c *Connection) Authenticate(nickname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nickname = nickname
	c.authenticated = true
}

// Nickname returns the authenticated nickname, or "" before login
func (c *Connection) Nickname() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nickname
}

// IsAuthenticated reports whether login has completed on this connection
func (c *Connection) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// Unicast events — the interfaces.Session protocol surface

// LoginError delivers a "loginError" event with a human-readable reason
func (c *Connection) LoginError(message string) {
	c.emit(types.EventLoginError, message)
}

// LoginSuccess delivers a "loginSuccess" event
func (c *Connection) LoginSuccess(nickname string) {
	c.emit(types.EventLoginSuccess, types.LoginSuccess{Nickname: nickname})
}

// Messages replays the full ordered history as a "messages" event
func (c *Connection) Messages(messages []types.Message) {
	if messages == nil {
		messages = []types.Message{}
	}
	c.emit(types.EventMessages, messages)
}

// Banned delivers a "banned" event carrying the ban length in minutes
// FUNCTIONAL DISCOVERY: The payload is a bare JSON number, matching what the
// existing client expects
func (c *Connection) Banned(minutes int) {
	c.emit(types.EventBanned, minutes)
}
