package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mfchat/pkg/types"
)

// jsonFile holds the shared mechanics of one JSON-array-per-file persistence
// ARCHITECTURAL DISCOVERY: The whole collection is rewritten on every save —
// simple, crash-obvious, and compatible with the existing accounts.json and
// messages.json files the original deployment already has on disk
type jsonFile struct {
	path string
}

// load reads the file into dst, treating a missing file as an empty collection
// FUNCTIONAL DISCOVERY: First use must tolerate a non-existent file and
// initialize to an empty sequence rather than failing startup
func (f *jsonFile) load(dst interface{}) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return nil
}

// save writes the collection as indented JSON via a temp-file rename
// TECHNICAL DISCOVERY: Rename is atomic on POSIX filesystems, so a crash
// mid-save leaves the previous file intact instead of a truncated array
func (f *jsonFile) save(src interface{}) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f.path, err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.path, err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// AccountFile is a JSON-file backed implementation of interfaces.AccountStore
type AccountFile struct {
	file jsonFile
}

// NewAccountFile creates an account store backed by the given JSON file
func NewAccountFile(path string) *AccountFile {
	return &AccountFile{file: jsonFile{path: path}}
}

// LoadAll returns every persisted account in file order
func (s *AccountFile) LoadAll() ([]types.Account, error) {
	accounts := []types.Account{}
	if err := s.file.load(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SaveAll replaces the persisted account collection
func (s *AccountFile) SaveAll(accounts []types.Account) error {
	if accounts == nil {
		accounts = []types.Account{}
	}
	return s.file.save(accounts)
}

// MessageFile is a JSON-file backed implementation of interfaces.MessageStore
type MessageFile struct {
	file jsonFile
}

// NewMessageFile creates a message store backed by the given JSON file
func NewMessageFile(path string) *MessageFile {
	return &MessageFile{file: jsonFile{path: path}}
}

// LoadAll returns the full ordered message log
func (s *MessageFile) LoadAll() ([]types.Message, error) {
	messages := []types.Message{}
	if err := s.file.load(&messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SaveAll replaces the persisted message log
// FUNCTIONAL DISCOVERY: Saving an empty slice writes "[]", which is exactly
// how history truncation is represented on disk
func (s *MessageFile) SaveAll(messages []types.Message) error {
	if messages == nil {
		messages = []types.Message{}
	}
	return s.file.save(messages)
}
