package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mfchat/pkg/types"
)

func TestAccountFile_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	store := NewAccountFile(path)

	accounts, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll on missing file should succeed, got %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected empty collection, got %v", accounts)
	}
}

func TestAccountFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	store := NewAccountFile(path)

	banUntil := time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC)
	saved := []types.Account{
		{Nickname: "alice", CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{Nickname: "bob", CreatedAt: time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC), Muted: true, Banned: true, BanUntil: &banUntil},
	}
	if err := store.SaveAll(saved); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(loaded))
	}
	if loaded[0].Nickname != "alice" || loaded[0].Muted || loaded[0].Banned || loaded[0].BanUntil != nil {
		t.Errorf("First account corrupted: %+v", loaded[0])
	}
	if loaded[1].Nickname != "bob" || !loaded[1].Muted || !loaded[1].Banned {
		t.Errorf("Second account corrupted: %+v", loaded[1])
	}
	if loaded[1].BanUntil == nil || !loaded[1].BanUntil.Equal(banUntil) {
		t.Errorf("Expected banUntil %v, got %v", banUntil, loaded[1].BanUntil)
	}
	if !loaded[1].CreatedAt.Equal(saved[1].CreatedAt) {
		t.Errorf("Expected createdAt %v, got %v", saved[1].CreatedAt, loaded[1].CreatedAt)
	}
}

func TestAccountFile_FieldNamesOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	store := NewAccountFile(path)

	banUntil := time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC)
	err := store.SaveAll([]types.Account{
		{Nickname: "alice", CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), Banned: true, BanUntil: &banUntil},
	})
	if err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	text := string(data)
	for _, field := range []string{`"nickname"`, `"createdAt"`, `"muted"`, `"banned"`, `"banUntil"`} {
		if !strings.Contains(text, field) {
			t.Errorf("Expected on-disk field %s, file was:\n%s", field, text)
		}
	}
}

func TestMessageFile_RoundTripPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store := NewMessageFile(path)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	saved := []types.Message{
		{Nickname: "alice", Text: "first", Timestamp: base},
		{Nickname: "bob", Text: "second", Important: true, Timestamp: base},
		{Nickname: "alice", Text: "third", Timestamp: base.Add(time.Second)},
	}
	if err := store.SaveAll(saved); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(loaded))
	}
	for i, want := range []string{"first", "second", "third"} {
		if loaded[i].Text != want {
			t.Errorf("Message %d out of order: expected %s, got %s", i, want, loaded[i].Text)
		}
	}
	if !loaded[1].Important {
		t.Error("Important flag lost on round trip")
	}
}

func TestMessageFile_SaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store := NewMessageFile(path)

	if err := store.SaveAll(nil); err != nil {
		t.Fatalf("SaveAll(nil) failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty JSON array on disk, got %q", string(data))
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected empty log, got %v", loaded)
	}
}

func TestMessageFile_SaveReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store := NewMessageFile(path)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	first := []types.Message{
		{Nickname: "alice", Text: "one", Timestamp: base},
		{Nickname: "alice", Text: "two", Timestamp: base},
	}
	if err := store.SaveAll(first); err != nil {
		t.Fatalf("First SaveAll failed: %v", err)
	}
	if err := store.SaveAll(first[:1]); err != nil {
		t.Fatalf("Second SaveAll failed: %v", err)
	}

	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Text != "one" {
		t.Errorf("Save must replace the whole log, got %v", loaded)
	}
}

func TestMessageFile_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
		t.Fatalf("Failed to create empty file: %v", err)
	}

	store := NewMessageFile(path)
	loaded, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll on empty file should succeed, got %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected empty log, got %v", loaded)
	}
}

func TestMessageFile_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to create corrupt file: %v", err)
	}

	store := NewMessageFile(path)
	if _, err := store.LoadAll(); err == nil {
		t.Error("LoadAll on corrupt file should fail")
	}
}

func TestJSONFile_SaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "messages.json")
	store := NewMessageFile(path)

	if err := store.SaveAll([]types.Message{}); err != nil {
		t.Fatalf("SaveAll should create parent directories, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected file at %s, got %v", path, err)
	}
}
