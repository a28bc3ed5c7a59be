package store

import (
	"database/sql"
	"fmt"
	"sync"

	// ARCHITECTURAL DISCOVERY: Import SQLite driver but only reference in connection string
	_ "github.com/mattn/go-sqlite3"

	"mfchat/pkg/types"
)

// SQLite persists accounts and messages in a single database file
// ARCHITECTURAL DISCOVERY: Same load-all/save-all contract as the JSON files —
// the registry and pipeline never know which backend is configured. Replace-all
// inside a transaction keeps the save externally atomic.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex // TECHNICAL: serializes replace-all writes on the single file
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	position   INTEGER PRIMARY KEY AUTOINCREMENT,
	nickname   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	muted      BOOLEAN NOT NULL DEFAULT 0,
	banned     BOOLEAN NOT NULL DEFAULT 0,
	ban_until  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	position  INTEGER PRIMARY KEY AUTOINCREMENT,
	nickname  TEXT NOT NULL,
	text      TEXT NOT NULL,
	important BOOLEAN NOT NULL DEFAULT 0,
	timestamp TIMESTAMP NOT NULL
);
`

// NewSQLite opens (creating if needed) the database file and ensures schema
func NewSQLite(path string) (*SQLite, error) {
	// TECHNICAL DISCOVERY: busy_timeout and WAL in the connection string keep
	// concurrent readers from tripping over the write transactions
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Accounts returns the account-store view of this database
func (s *SQLite) Accounts() *SQLiteAccounts {
	return &SQLiteAccounts{s: s}
}

// Messages returns the message-store view of this database
func (s *SQLite) Messages() *SQLiteMessages {
	return &SQLiteMessages{s: s}
}

// replaceAll deletes every row of table and reinserts rows within one tx
func (s *SQLite) replaceAll(table string, insert func(*sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // TECHNICAL: no-op after a successful commit

	if _, err := tx.Exec("DELETE FROM " + table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s replacement: %w", table, err)
	}
	return nil
}

// SQLiteAccounts implements interfaces.AccountStore on the shared database
type SQLiteAccounts struct {
	s *SQLite
}

// LoadAll returns every account ordered by insertion position
func (a *SQLiteAccounts) LoadAll() ([]types.Account, error) {
	rows, err := a.s.db.Query(`
		SELECT nickname, created_at, muted, banned, ban_until
		FROM accounts
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	accounts := []types.Account{}
	for rows.Next() {
		var account types.Account
		var banUntil sql.NullTime
		if err := rows.Scan(&account.Nickname, &account.CreatedAt, &account.Muted, &account.Banned, &banUntil); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		// FUNCTIONAL DISCOVERY: ban_until is null whenever banned is false
		if banUntil.Valid {
			t := banUntil.Time
			account.BanUntil = &t
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// SaveAll replaces the persisted account collection
func (a *SQLiteAccounts) SaveAll(accounts []types.Account) error {
	return a.s.replaceAll("accounts", func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO accounts (nickname, created_at, muted, banned, ban_until)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare account insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, account := range accounts {
			var banUntil interface{}
			if account.BanUntil != nil {
				banUntil = *account.BanUntil
			}
			if _, err := stmt.Exec(account.Nickname, account.CreatedAt, account.Muted, account.Banned, banUntil); err != nil {
				return fmt.Errorf("failed to insert account %s: %w", account.Nickname, err)
			}
		}
		return nil
	})
}

// SQLiteMessages implements interfaces.MessageStore on the shared database
type SQLiteMessages struct {
	s *SQLite
}

// LoadAll returns the full message log ordered by insertion position
// FUNCTIONAL DISCOVERY: Ordered by position, not timestamp — insertion order
// is display order even if two messages land in the same clock tick
func (m *SQLiteMessages) LoadAll() ([]types.Message, error) {
	rows, err := m.s.db.Query(`
		SELECT nickname, text, important, timestamp
		FROM messages
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := []types.Message{}
	for rows.Next() {
		var message types.Message
		if err := rows.Scan(&message.Nickname, &message.Text, &message.Important, &message.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return messages, nil
}

// SaveAll replaces the persisted message log
func (m *SQLiteMessages) SaveAll(messages []types.Message) error {
	return m.s.replaceAll("messages", func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO messages (nickname, text, important, timestamp)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare message insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, message := range messages {
			if _, err := stmt.Exec(message.Nickname, message.Text, message.Important, message.Timestamp); err != nil {
				return fmt.Errorf("failed to insert message: %w", err)
			}
		}
		return nil
	})
}
