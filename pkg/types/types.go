package types

import (
	"time"
)

// Event names carried on the wire, exactly as the original client speaks them
// ARCHITECTURAL DISCOVERY: Event name constants defined in one place so the
// transport and pipeline layers never disagree on the protocol vocabulary
const (
	EventLogin           = "login"
	EventLoginError      = "loginError"
	EventLoginSuccess    = "loginSuccess"
	EventMessages        = "messages"
	EventMessage         = "message"
	EventNewMessage      = "newMessage"
	EventBanned          = "banned"
	EventChangeNickname  = "changeNickname"
	EventNicknameChanged = "nicknameChanged"
	EventMuteUser        = "muteUser"
	EventUserMuted       = "userMuted"
	EventBanUser         = "banUser"
	EventUserBanned      = "userBanned"
	EventClearMessages   = "clearMessages"
	EventMessagesCleared = "messagesCleared"
)

// Account is the durable identity record, keyed by nickname
// FUNCTIONAL DISCOVERY: BanUntil is a pointer so "no ban" serializes as null,
// keeping the on-disk JSON compatible with the existing accounts file format
type Account struct {
	Nickname  string     `json:"nickname"`
	CreatedAt time.Time  `json:"createdAt"`
	Muted     bool       `json:"muted"`
	Banned    bool       `json:"banned"`
	BanUntil  *time.Time `json:"banUntil"`
}

// Message is a single chat record, immutable once created
// ARCHITECTURAL DISCOVERY: Nickname references the author by value, not by
// live link — renaming an account does not rewrite its message history
type Message struct {
	Nickname  string    `json:"nickname"`
	Text      string    `json:"text"`
	Important bool      `json:"important"`
	Timestamp time.Time `json:"timestamp"`
}

// Inbound event payloads — the closed set of requests a client can send.
// FUNCTIONAL DISCOVERY: One struct per event gives compile-time exhaustiveness
// in the dispatch switch instead of string-keyed dynamic payloads

// LoginRequest is the payload of the "login" event
type LoginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// MessageRequest is the payload of the "message" event
// TECHNICAL DISCOVERY: Important is optional on the wire and defaults to false
type MessageRequest struct {
	Text      string `json:"text"`
	Important bool   `json:"important,omitempty"`
}

// NicknameChangeRequest is the payload of the "changeNickname" event
type NicknameChangeRequest struct {
	OldNick string `json:"oldNick"`
	NewNick string `json:"newNick"`
}

// MuteRequest is the payload of the "muteUser" event
type MuteRequest struct {
	Nickname string `json:"nickname"`
	Muted    bool   `json:"muted"`
}

// BanRequest is the payload of the "banUser" event
type BanRequest struct {
	Nickname string `json:"nickname"`
	Banned   bool   `json:"banned"`
}

// Outbound payloads that are not a bare string, number or Message

// LoginSuccess is the payload of the "loginSuccess" event
type LoginSuccess struct {
	Nickname string `json:"nickname"`
}

// NicknameChanged mirrors NicknameChangeRequest for the broadcast direction
type NicknameChanged struct {
	OldNick string `json:"oldNick"`
	NewNick string `json:"newNick"`
}

// UserMuted is the payload of the "userMuted" broadcast
type UserMuted struct {
	Nickname string `json:"nickname"`
	Muted    bool   `json:"muted"`
}

// UserBanned is the payload of the "userBanned" broadcast
type UserBanned struct {
	Nickname string `json:"nickname"`
	Banned   bool   `json:"banned"`
}
