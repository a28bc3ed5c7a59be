package account

import (
	"log"
	"math"
	"sync"
	"time"

	"mfchat/pkg/interfaces"
	"mfchat/pkg/types"
)

// Registry owns the persisted account collection and all moderation state
// ARCHITECTURAL DISCOVERY: Every operation is a full load→mutate→save cycle
// against the store, serialized by one mutex — the persisted file is the
// source of truth and memory never drifts ahead of it between operations
type Registry struct {
	store       interfaces.AccountStore
	broadcaster interfaces.Broadcaster
	password    string
	banDuration time.Duration
	mu          sync.Mutex
	now         func() time.Time // injected clock for deterministic tests
}

// NewRegistry creates an account registry
// FUNCTIONAL DISCOVERY: The broadcaster is injected so moderation results
// reach every client without the registry knowing about the transport
func NewRegistry(store interfaces.AccountStore, broadcaster interfaces.Broadcaster, password string, banDuration time.Duration) *Registry {
	return &Registry{
		store:       store,
		broadcaster: broadcaster,
		password:    password,
		banDuration: banDuration,
		now:         time.Now,
	}
}

// SetClock overrides the registry's time source. Test hook only.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Login authenticates a nickname against the shared chat password
// FUNCTIONAL DISCOVERY: Ban expiry is lazy — a ban whose deadline has passed
// stays in storage until the owner's next login attempt clears it here.
// There is deliberately no background sweep.
func (r *Registry) Login(nickname, password string) (*types.Account, error) {
	if password != r.password {
		// Wrong password never creates or mutates an account
		return nil, ErrWrongPassword
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.store.LoadAll()
	if err != nil {
		log.Printf("Failed to load accounts: %v", err)
		accounts = []types.Account{}
	}

	now := r.now()

	if i := findAccount(accounts, nickname); i >= 0 {
		account := &accounts[i]
		if account.Banned {
			if account.BanUntil != nil && account.BanUntil.After(now) {
				// FUNCTIONAL DISCOVERY: Minutes reported rounded up, so 119
				// seconds remaining tells the user "2 minutes"
				minutes := int(math.Ceil(account.BanUntil.Sub(now).Minutes()))
				return nil, &BanActiveError{MinutesLeft: minutes}
			}
			account.Banned = false
			account.BanUntil = nil
			if err := r.store.SaveAll(accounts); err != nil {
				log.Printf("Failed to save accounts after ban expiry: %v", err)
			}
		}
		result := *account
		return &result, nil
	}

	// First login with an unseen nickname provisions the account
	account := types.Account{
		Nickname:  nickname,
		CreatedAt: now,
		Muted:     false,
		Banned:    false,
		BanUntil:  nil,
	}
	accounts = append(accounts, account)
	if err := r.store.SaveAll(accounts); err != nil {
		log.Printf("Failed to save new account %s: %v", nickname, err)
	}
	return &account, nil
}

// Find returns the account for a nickname, or ErrAccountNotFound
func (r *Registry) Find(nickname string) (*types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.store.LoadAll()
	if err != nil {
		return nil, err
	}
	if i := findAccount(accounts, nickname); i >= 0 {
		result := accounts[i]
		return &result, nil
	}
	return nil, ErrAccountNotFound
}

// SetNickname renames an account in place and broadcasts the change
// FUNCTIONAL DISCOVERY: Silent no-op when the old nickname does not exist —
// moderation actions against unknown accounts are dropped without a signal
func (r *Registry) SetNickname(oldNick, newNick string) {
	r.mutate(oldNick, func(account *types.Account) {
		account.Nickname = newNick
	}, func() {
		r.broadcaster.NicknameChanged(oldNick, newNick)
	})
}

// SetMuted flips the mute flag and broadcasts the result
func (r *Registry) SetMuted(nickname string, muted bool) {
	r.mutate(nickname, func(account *types.Account) {
		account.Muted = muted
	}, func() {
		r.broadcaster.UserMuted(nickname, muted)
	})
}

// SetBanned sets or clears a time-boxed ban and broadcasts the result
// FUNCTIONAL DISCOVERY: BanUntil is non-null exactly while banned is true —
// setting the flag stamps now+banDuration, clearing it nulls the deadline
func (r *Registry) SetBanned(nickname string, banned bool) {
	r.mutate(nickname, func(account *types.Account) {
		account.Banned = banned
		if banned {
			until := r.now().Add(r.banDuration)
			account.BanUntil = &until
		} else {
			account.BanUntil = nil
		}
	}, func() {
		r.broadcaster.UserBanned(nickname, banned)
	})
}

// BanMinutes reports the configured ban length in whole minutes
func (r *Registry) BanMinutes() int {
	return int(r.banDuration / time.Minute)
}

// mutate runs one load→mutate→save cycle for a single account
// ARCHITECTURAL DISCOVERY: Broadcast fires only after a successful save. A
// failed save is logged and the broadcast suppressed, which leaves memory and
// disk inconsistent until the next successful write — a known-weak failure
// mode preserved from the original behavior, not silently repaired.
func (r *Registry) mutate(nickname string, apply func(*types.Account), broadcast func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.store.LoadAll()
	if err != nil {
		log.Printf("Failed to load accounts: %v", err)
		return
	}

	i := findAccount(accounts, nickname)
	if i < 0 {
		return
	}

	apply(&accounts[i])

	if err := r.store.SaveAll(accounts); err != nil {
		log.Printf("Failed to save accounts: %v", err)
		return
	}

	broadcast()
}

// findAccount returns the index of nickname in accounts, or -1
func findAccount(accounts []types.Account, nickname string) int {
	for i := range accounts {
		if accounts[i].Nickname == nickname {
			return i
		}
	}
	return -1
}
