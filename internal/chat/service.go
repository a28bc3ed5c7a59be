package chat

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"mfchat/internal/account"
	"mfchat/internal/ratelimit"
	"mfchat/pkg/interfaces"
	"mfchat/pkg/types"
)

// Service is the session/message pipeline: it owns message admission,
// history replay and the moderation orchestration
// ARCHITECTURAL DISCOVERY: One method per inbound event gives the dispatcher
// a closed, compiler-checked surface instead of string-keyed handlers
type Service struct {
	accounts    *account.Registry
	messages    interfaces.MessageStore
	tracker     *ratelimit.Tracker
	broadcaster interfaces.Broadcaster
	logMu       sync.Mutex       // serializes load→append→save cycles on the message log
	now         func() time.Time // injected clock for deterministic tests
}

// NewService creates the chat pipeline
func NewService(accounts *account.Registry, messages interfaces.MessageStore, tracker *ratelimit.Tracker, broadcaster interfaces.Broadcaster) *Service {
	return &Service{
		accounts:    accounts,
		messages:    messages,
		tracker:     tracker,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// SetClock overrides the pipeline's time source. Test hook only.
func (s *Service) SetClock(now func() time.Time) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	s.now = now
}

// Login moves a session from Unauthenticated to Authenticated
// FUNCTIONAL DISCOVERY: History is replayed once, here, to the requesting
// connection only — it is never incrementally backfilled later
func (s *Service) Login(sess interfaces.Session, req types.LoginRequest) {
	acct, err := s.accounts.Login(req.Nickname, req.Password)
	if err != nil {
		sess.LoginError(loginErrorMessage(err))
		return
	}

	sess.Authenticate(acct.Nickname)
	sess.LoginSuccess(acct.Nickname)

	history, err := s.messages.LoadAll()
	if err != nil {
		// FUNCTIONAL DISCOVERY: An unreadable log degrades to an empty
		// replay rather than failing the login
		log.Printf("Failed to load messages for history replay: %v", err)
		history = []types.Message{}
	}
	sess.Messages(history)
}

// SendMessage admits, persists and broadcasts one chat message
// FUNCTIONAL DISCOVERY: Every rejection on this path is a silent drop — the
// sender gets no error. The only user-visible outcome besides delivery is
// the spam-triggered ban notice.
func (s *Service) SendMessage(sess interfaces.Session, req types.MessageRequest) {
	if !sess.IsAuthenticated() {
		return
	}
	nickname := sess.Nickname()

	acct, err := s.accounts.Find(nickname)
	if err != nil {
		if !errors.Is(err, account.ErrAccountNotFound) {
			log.Printf("Failed to look up account %s: %v", nickname, err)
		}
		return
	}
	if acct.Muted || acct.Banned {
		return
	}

	// Spam check uses prior history only; the triggering message is
	// discarded and never recorded
	if s.tracker.IsSpamming(nickname) {
		s.accounts.SetBanned(nickname, true)
		sess.Banned(s.accounts.BanMinutes())
		return
	}
	s.tracker.Record(nickname)

	s.logMu.Lock()
	defer s.logMu.Unlock()

	message := types.Message{
		Nickname:  nickname,
		Text:      req.Text,
		Important: req.Important,
		Timestamp: s.now(),
	}

	messages, err := s.messages.LoadAll()
	if err != nil {
		log.Printf("Failed to load messages: %v", err)
		messages = []types.Message{}
	}
	messages = append(messages, message)

	// ARCHITECTURAL DISCOVERY: Broadcast only after a successful save. A
	// failed save is logged and the message silently lost from other
	// clients' view — preserved known-weak behavior, flagged in tests.
	if err := s.messages.SaveAll(messages); err != nil {
		log.Printf("Failed to save messages: %v", err)
		return
	}

	s.broadcaster.NewMessage(message)
}

// ChangeNickname renames an account; the registry broadcasts on success
func (s *Service) ChangeNickname(req types.NicknameChangeRequest) {
	s.accounts.SetNickname(req.OldNick, req.NewNick)
}

// MuteUser flips an account's mute flag; the registry broadcasts on success
func (s *Service) MuteUser(req types.MuteRequest) {
	s.accounts.SetMuted(req.Nickname, req.Muted)
}

// BanUser sets or clears a ban; the registry broadcasts on success
func (s *Service) BanUser(req types.BanRequest) {
	s.accounts.SetBanned(req.Nickname, req.Banned)
}

// ClearMessages truncates the persisted log and broadcasts the wipe
// FUNCTIONAL DISCOVERY: Clearing touches only the message log — account
// moderation state is unaffected
func (s *Service) ClearMessages() {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	if err := s.messages.SaveAll([]types.Message{}); err != nil {
		log.Printf("Failed to clear messages: %v", err)
		return
	}
	s.broadcaster.MessagesCleared()
}

// Disconnect releases a session
// FUNCTIONAL DISCOVERY: Rate-limit history is keyed by nickname and survives
// the connection, so reconnecting inherits prior spam history in the window
func (s *Service) Disconnect(sess interfaces.Session) {
	if sess.IsAuthenticated() {
		log.Printf("User disconnected: %s", sess.Nickname())
	} else {
		log.Printf("User disconnected")
	}
}

// loginErrorMessage maps a login failure to the string sent to the client
func loginErrorMessage(err error) string {
	var banErr *account.BanActiveError
	switch {
	case errors.Is(err, account.ErrWrongPassword):
		return "Wrong password"
	case errors.As(err, &banErr):
		return fmt.Sprintf("You are banned. %d minutes left", banErr.MinutesLeft)
	default:
		return "Login failed"
	}
}
