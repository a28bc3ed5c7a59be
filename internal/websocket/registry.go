package websocket

import (
	"log"
	"sync"

	"mfchat/pkg/types"
)

// Registry tracks every live connection and implements interfaces.Broadcaster
// ARCHITECTURAL DISCOVERY: Keyed by connection ID, not nickname — clients are
// broadcast targets from the moment they connect, before any login, exactly
// like the original transport's "emit to all sockets" behavior
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

// NewRegistry creates an empty connection registry
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
	}
}

// Add registers a connection
func (r *Registry) Add(conn *Connection) error {
	if conn == nil {
		return ErrNilConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[conn.ID()] = conn
	return nil
}

// Remove unregisters a connection. Idempotent.
func (r *Registry) Remove(conn *Connection) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, conn.ID())
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// broadcast queues one event on every live connection
// FUNCTIONAL DISCOVERY: Per-connection writer goroutines mean this never
// blocks on a slow client; events are queued or dropped per connection
func (r *Registry) broadcast(event string, payload interface{}) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("Failed to encode %s broadcast: %v", event, err)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, conn := range r.connections {
		select {
		case conn.writeCh <- frame:
		case <-conn.ctx.Done():
		default:
			log.Printf("Dropping %s broadcast for connection %s: write buffer full", event, id)
		}
	}
}

// Shutdown closes every live connection
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, conn := range r.connections {
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close connection %s: %v", id, err)
		}
		delete(r.connections, id)
	}
}

// Broadcast events — the interfaces.Broadcaster protocol surface

// NewMessage broadcasts an admitted chat message
func (r *Registry) NewMessage(message types.Message) {
	r.broadcast(types.EventNewMessage, message)
}

// NicknameChanged broadcasts a completed rename
func (r *Registry) NicknameChanged(oldNick, newNick string) {
	r.broadcast(types.EventNicknameChanged, types.NicknameChanged{OldNick: oldNick, NewNick: newNick})
}

// UserMuted broadcasts a mute flag change
func (r *Registry) UserMuted(nickname string, muted bool) {
	r.broadcast(types.EventUserMuted, types.UserMuted{Nickname: nickname, Muted: muted})
}

// UserBanned broadcasts a ban flag change
func (r *Registry) UserBanned(nickname string, banned bool) {
	r.broadcast(types.EventUserBanned, types.UserBanned{Nickname: nickname, Banned: banned})
}

// MessagesCleared broadcasts a full history truncation
func (r *Registry) MessagesCleared() {
	r.broadcast(types.EventMessagesCleared, nil)
}
