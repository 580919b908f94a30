package store

import (
	"encoding/json"
	"fmt"

	"github.com/vlourenco/cardlink/internal/model"
)

// Credentials is the session identity persisted across restarts.
type Credentials struct {
	Token   string `json:"token,omitempty"`
	UserID  string `json:"userId,omitempty"`
	VBCID   string `json:"vbcId,omitempty"`
	PitchID string `json:"pitchId,omitempty"`
}

// SaveChatList replaces the cached chat list blob.
func (db *DB) SaveChatList(chats []model.Chat) error {
	data, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("encode chat list: %w", err)
	}
	return db.Set(KeyChatList, string(data))
}

// LoadChatList reads the cached chat list. Returns nil when no cache exists.
func (db *DB) LoadChatList() ([]model.Chat, error) {
	raw, ok, err := db.Get(KeyChatList)
	if err != nil || !ok {
		return nil, err
	}
	var chats []model.Chat
	if err := json.Unmarshal([]byte(raw), &chats); err != nil {
		return nil, fmt.Errorf("decode chat list: %w", err)
	}
	return chats, nil
}

// SaveLastViewed replaces the {chatId -> ISO timestamp} map.
func (db *DB) SaveLastViewed(m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode last viewed: %w", err)
	}
	return db.Set(KeyLastViewed, string(data))
}

// LoadLastViewed reads the last-viewed map. Returns an empty map when no
// entry exists.
func (db *DB) LoadLastViewed() (map[string]string, error) {
	raw, ok, err := db.Get(KeyLastViewed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode last viewed: %w", err)
	}
	return m, nil
}

// SaveCredentials persists the session identity.
func (db *DB) SaveCredentials(c *Credentials) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return db.Set(KeyCredentials, string(data))
}

// LoadCredentials reads the session identity. Returns nil when none stored.
func (db *DB) LoadCredentials() (*Credentials, error) {
	raw, ok, err := db.Get(KeyCredentials)
	if err != nil || !ok {
		return nil, err
	}
	var c Credentials
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return &c, nil
}

// ClearCredentials removes the stored session identity (logout).
func (db *DB) ClearCredentials() error {
	return db.Delete(KeyCredentials)
}
