package interfaces

import (
	"mfchat/pkg/types"
)

// AccountStore persists the full account collection
// ARCHITECTURAL DISCOVERY: Load-all/save-all matches the replace-the-file
// persistence model — every mutation is a read-modify-write of the whole set,
// so the store never needs per-record update semantics
type AccountStore interface {
	// LoadAll returns every account in insertion order.
	// FUNCTIONAL DISCOVERY: A missing or empty backing store is not an error —
	// first use must initialize to an empty collection
	LoadAll() ([]types.Account, error)

	// SaveAll replaces the entire persisted collection.
	// Callers treat a returned error as "nothing was written".
	SaveAll(accounts []types.Account) error
}

// MessageStore persists the append-only ordered message log
// FUNCTIONAL DISCOVERY: Insertion order is display order; the store must
// reproduce records field-for-field in the same relative order on reload
type MessageStore interface {
	// LoadAll returns the full ordered message log.
	LoadAll() ([]types.Message, error)

	// SaveAll replaces the persisted log. Saving an empty slice is how the
	// moderation "clear messages" action truncates history.
	SaveAll(messages []types.Message) error
}
