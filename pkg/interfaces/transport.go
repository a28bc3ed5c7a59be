package interfaces

import (
	"mfchat/pkg/types"
)

// Session is one live client connection as seen by the chat pipeline
// ARCHITECTURAL DISCOVERY: One method per outbound unicast event instead of a
// string-keyed emit — the compiler checks the protocol surface, and mock
// sessions in tests record exactly which events were delivered
type Session interface {
	// Identity binding. Nickname returns "" until Authenticate is called;
	// the binding lives only as long as the connection.

	// Authenticate binds the session to a nickname after a successful login
	Authenticate(nickname string)

	// Nickname returns the authenticated nickname, or "" before login
	Nickname() string

	// IsAuthenticated reports whether login has completed on this session
	IsAuthenticated() bool

	// Unicast events delivered to this connection only.
	// FUNCTIONAL DISCOVERY: Delivery failures are the transport's problem —
	// the pipeline never changes state based on whether a write succeeded

	// LoginError delivers a "loginError" event with a human-readable reason
	LoginError(message string)

	// LoginSuccess delivers a "loginSuccess" event
	LoginSuccess(nickname string)

	// Messages replays the full ordered history as a "messages" event
	Messages(messages []types.Message)

	// Banned delivers a "banned" event with the ban length in minutes
	Banned(minutes int)
}

// Broadcaster delivers events to every connected client, logged-in or not
// FUNCTIONAL DISCOVERY: Moderation results go to all connections so every
// client's view stays consistent the moment an action lands
type Broadcaster interface {
	// NewMessage broadcasts an admitted chat message
	NewMessage(message types.Message)

	// NicknameChanged broadcasts a completed rename
	NicknameChanged(oldNick, newNick string)

	// UserMuted broadcasts a mute flag change
	UserMuted(nickname string, muted bool)

	// UserBanned broadcasts a ban flag change
	UserBanned(nickname string, banned bool)

	// MessagesCleared broadcasts a full history truncation
	MessagesCleared()
}
