package store

import (
	"database/sql"
	"time"
)

// Well-known kv keys. Values are opaque JSON blobs with no schema
// versioning, read back via direct parse.
const (
	KeyChatList    = "chat_list"
	KeyLastViewed  = "last_viewed"
	KeyCredentials = "credentials"
)

// Set writes a value under key, replacing any previous value.
func (db *DB) Set(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	return err
}

// Get reads the value under key. Returns ("", false, nil) when absent.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (db *DB) Delete(key string) error {
	_, err := db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}
