// Package state holds the in-memory, observable chat state: the single
// source of truth the UI renders from. Slices are replaced wholesale by the
// sync layer and mutated directly by locally-originated actions (send,
// star toggle, delete); the next poll overwrites local mutations.
//
// Mutators never fail: each one is a synchronous state transition that
// publishes a state.* event on the bus for subscribers of that slice.
// All failure handling belongs to the calling layer.
package state

import (
	"sync"
	"time"

	"github.com/vlourenco/cardlink/internal/bus"
	"github.com/vlourenco/cardlink/internal/model"
	"github.com/vlourenco/cardlink/internal/observability"
)

// Event kinds published per slice.
const (
	EventCurrentChat = "state.current_chat"
	EventChats       = "state.chats"
	EventMessages    = "state.messages"
	EventStarred     = "state.starred"
	EventLastViewed  = "state.last_viewed"
	EventIntent      = "state.intent"
)

// Intent carries the transient fields set while navigating toward a chat
// that may not exist yet. Consumed exactly once.
type Intent struct {
	Target         model.ChatUser
	InitialMessage string
	MessageType    string
}

// Store owns the in-process copies of chat state. One instance per daemon.
type Store struct {
	mu sync.RWMutex
	b  *bus.Bus

	currentChat *model.Chat
	chats       []model.Chat
	messages    []model.ChatMessage
	starred     []model.ChatMessage
	lastViewed  map[string]string

	intent *Intent
}

// New creates an empty store publishing slice updates on b.
func New(b *bus.Bus) *Store {
	return &Store{
		b:          b,
		lastViewed: make(map[string]string),
	}
}

func (s *Store) publish(kind string, payload any) {
	observability.ObserveStateMutation(kind)
	if s.b != nil {
		s.b.Publish(bus.NewEvent(kind, payload))
	}
}

// SetCurrentChat replaces the current chat. No validation is performed.
func (s *Store) SetCurrentChat(chat *model.Chat) {
	s.mu.Lock()
	s.currentChat = chat
	s.mu.Unlock()
	s.publish(EventCurrentChat, chat)
}

// ClearCurrentChat drops the current chat, e.g. when leaving the chat screen.
func (s *Store) ClearCurrentChat() {
	s.SetCurrentChat(nil)
}

// CurrentChat returns the current chat, or nil.
func (s *Store) CurrentChat() *model.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentChat
}

// SetChats replaces the full chat list. Durable persistence of the list is
// the subscriber's job, not the store's; see the sync engine.
func (s *Store) SetChats(chats []model.Chat) {
	cp := make([]model.Chat, len(chats))
	copy(cp, chats)
	s.mu.Lock()
	s.chats = cp
	s.mu.Unlock()
	s.publish(EventChats, cp)
}

// Chats returns a copy of the chat list.
func (s *Store) Chats() []model.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.Chat, len(s.chats))
	copy(cp, s.chats)
	return cp
}

// SetMessages replaces the message list for whichever chat is current.
// The store does not verify the messages share one chat id; that is the
// caller's responsibility.
func (s *Store) SetMessages(msgs []model.ChatMessage) {
	cp := make([]model.ChatMessage, len(msgs))
	copy(cp, msgs)
	s.mu.Lock()
	s.messages = cp
	s.mu.Unlock()
	s.publish(EventMessages, cp)
}

// ClearMessages drops the message list, e.g. on chat exit or logout.
func (s *Store) ClearMessages() {
	s.SetMessages(nil)
}

// AddMessage prepends msg: index 0 is always the most recently added
// message locally, regardless of its CreatedAt.
func (s *Store) AddMessage(msg model.ChatMessage) {
	s.mu.Lock()
	s.messages = append([]model.ChatMessage{msg}, s.messages...)
	s.mu.Unlock()
	s.publish(EventMessages, msg)
}

// DeleteMessage removes the message with the given id from the local list.
// No-op when absent. The caller must already have succeeded the API call;
// the store does not confirm server-side deletion.
func (s *Store) DeleteMessage(id string) {
	s.mu.Lock()
	removed := false
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()
	if removed {
		s.publish(EventMessages, id)
	}
}

// Messages returns a copy of the message list.
func (s *Store) Messages() []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.ChatMessage, len(s.messages))
	copy(cp, s.messages)
	return cp
}

// SetStarredMessages replaces the starred collection, which is scoped
// across all chats and keyed by message id.
func (s *Store) SetStarredMessages(msgs []model.ChatMessage) {
	cp := make([]model.ChatMessage, len(msgs))
	copy(cp, msgs)
	s.mu.Lock()
	s.starred = cp
	s.mu.Unlock()
	s.publish(EventStarred, cp)
}

// AddStarredMessage adds msg to the starred collection, replacing in place
// when a message with the same id is already present.
func (s *Store) AddStarredMessage(msg model.ChatMessage) {
	s.mu.Lock()
	replaced := false
	for i, m := range s.starred {
		if m.ID == msg.ID {
			s.starred[i] = msg
			replaced = true
			break
		}
	}
	if !replaced {
		s.starred = append(s.starred, msg)
	}
	s.mu.Unlock()
	s.publish(EventStarred, msg)
}

// RemoveStarredMessage removes the message with the given id from the
// starred collection. No-op when absent.
func (s *Store) RemoveStarredMessage(id string) {
	s.mu.Lock()
	removed := false
	for i, m := range s.starred {
		if m.ID == id {
			s.starred = append(s.starred[:i], s.starred[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()
	if removed {
		s.publish(EventStarred, id)
	}
}

// StarredMessages returns a copy of the starred collection.
func (s *Store) StarredMessages() []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]model.ChatMessage, len(s.starred))
	copy(cp, s.starred)
	return cp
}

// ToggleMessageStar flips the starred flag of the message with the given
// id and reconciles the starred collection so that a message present in
// the local list is starred iff it appears in the starred collection.
// Unknown ids leave both collections untouched and return false.
//
// Messages starred from another device only show up here after the next
// SetStarredMessages from a server refetch.
func (s *Store) ToggleMessageStar(id string) (nowStarred bool, ok bool) {
	s.mu.Lock()
	idx := -1
	for i, m := range s.messages {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return false, false
	}

	s.messages[idx].Starred = !s.messages[idx].Starred
	msg := s.messages[idx]

	if msg.Starred {
		replaced := false
		for i, m := range s.starred {
			if m.ID == id {
				s.starred[i] = msg
				replaced = true
				break
			}
		}
		if !replaced {
			s.starred = append(s.starred, msg)
		}
	} else {
		for i, m := range s.starred {
			if m.ID == id {
				s.starred = append(s.starred[:i], s.starred[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	s.publish(EventMessages, msg)
	s.publish(EventStarred, msg)
	return msg.Starred, true
}

// SetLastViewed merges a chat's last-viewed ISO timestamp into the map.
// The full map is published so the sync engine can persist it durably.
func (s *Store) SetLastViewed(chatID, timestamp string) {
	s.mu.Lock()
	s.lastViewed[chatID] = timestamp
	cp := copyMap(s.lastViewed)
	s.mu.Unlock()
	s.publish(EventLastViewed, cp)
}

// LoadLastViewed replaces the whole map, used to warm the store from the
// local cache at startup. Does not publish; nothing observed it change.
func (s *Store) LoadLastViewed(m map[string]string) {
	s.mu.Lock()
	s.lastViewed = copyMap(m)
	s.mu.Unlock()
}

// LastViewed returns the timestamp for a chat and whether one is recorded.
func (s *Store) LastViewed(chatID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.lastViewed[chatID]
	return ts, ok
}

// LastViewedMap returns a copy of the whole last-viewed map.
func (s *Store) LastViewedMap() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMap(s.lastViewed)
}

// UnreadCount derives how many messages in the cached chat list's copy of
// the chat arrived after the last-viewed timestamp. With no recorded
// timestamp every message counts.
func (s *Store) UnreadCount(chatID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chat *model.Chat
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			chat = &s.chats[i]
			break
		}
	}
	if chat == nil {
		return 0
	}

	since, ok := s.lastViewed[chatID]
	if !ok {
		return len(chat.Messages)
	}
	sinceT, err := time.Parse(time.RFC3339, since)
	if err != nil {
		return len(chat.Messages)
	}

	count := 0
	for _, m := range chat.Messages {
		if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil && t.After(sinceT) {
			count++
		}
	}
	return count
}

// SetIntent records the transient chat-intent fields used while
// navigating toward a target user's chat.
func (s *Store) SetIntent(in *Intent) {
	s.mu.Lock()
	s.intent = in
	s.mu.Unlock()
	s.publish(EventIntent, in)
}

// TakeIntent returns and clears the pending intent, or nil.
func (s *Store) TakeIntent() *Intent {
	s.mu.Lock()
	in := s.intent
	s.intent = nil
	s.mu.Unlock()
	return in
}

// ClearAll wipes every slice, used on logout.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.currentChat = nil
	s.chats = nil
	s.messages = nil
	s.starred = nil
	s.lastViewed = make(map[string]string)
	s.intent = nil
	s.mu.Unlock()
	s.publish(EventChats, []model.Chat(nil))
	s.publish(EventMessages, []model.ChatMessage(nil))
	s.publish(EventStarred, []model.ChatMessage(nil))
	s.publish(EventLastViewed, map[string]string{})
}

func copyMap(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
