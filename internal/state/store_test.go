package state

import (
	"testing"

	"github.com/vlourenco/cardlink/internal/bus"
	"github.com/vlourenco/cardlink/internal/model"
)

func msg(id string) model.ChatMessage {
	return model.ChatMessage{ID: id, Content: "msg " + id, MessageType: model.MessageTypeText}
}

// starInvariantHolds checks that every message in the local list is starred
// iff a message with the same id sits in the starred collection.
func starInvariantHolds(t *testing.T, s *Store) {
	t.Helper()
	starred := make(map[string]bool)
	for _, m := range s.StarredMessages() {
		starred[m.ID] = true
	}
	for _, m := range s.Messages() {
		if m.Starred != starred[m.ID] {
			t.Errorf("star invariant broken for %s: starred=%v, in collection=%v", m.ID, m.Starred, starred[m.ID])
		}
	}
}

func TestAddMessagePrepends(t *testing.T) {
	s := New(bus.New())
	s.SetMessages([]model.ChatMessage{msg("m1")})
	s.AddMessage(msg("m2"))

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "m2" || msgs[1].ID != "m1" {
		t.Errorf("order = [%s %s], want [m2 m1]", msgs[0].ID, msgs[1].ID)
	}
}

func TestAddMessageIgnoresCreatedAt(t *testing.T) {
	s := New(bus.New())
	newer := msg("m1")
	newer.CreatedAt = "2026-01-02T10:00:00Z"
	s.SetMessages([]model.ChatMessage{newer})

	older := msg("m2")
	older.CreatedAt = "2020-01-01T00:00:00Z"
	s.AddMessage(older)

	if got := s.Messages()[0].ID; got != "m2" {
		t.Errorf("messages[0] = %s, want m2 (prepend regardless of createdAt)", got)
	}
}

func TestDeleteMessageIdempotent(t *testing.T) {
	s := New(bus.New())
	s.SetMessages([]model.ChatMessage{msg("m1"), msg("m2")})

	s.DeleteMessage("m1")
	if len(s.Messages()) != 1 {
		t.Fatalf("got %d messages after delete, want 1", len(s.Messages()))
	}

	// Second delete of the same id is a no-op.
	s.DeleteMessage("m1")
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].ID != "m2" {
		t.Errorf("second delete changed state: %+v", msgs)
	}
}

func TestToggleStarRoundTrip(t *testing.T) {
	s := New(bus.New())
	s.SetMessages([]model.ChatMessage{msg("m1")})

	nowStarred, ok := s.ToggleMessageStar("m1")
	if !ok || !nowStarred {
		t.Fatalf("first toggle = (%v, %v), want (true, true)", nowStarred, ok)
	}
	if !s.Messages()[0].Starred {
		t.Error("messages copy should carry starred=true")
	}
	if len(s.StarredMessages()) != 1 {
		t.Errorf("starred collection has %d entries, want 1", len(s.StarredMessages()))
	}
	starInvariantHolds(t, s)

	nowStarred, ok = s.ToggleMessageStar("m1")
	if !ok || nowStarred {
		t.Fatalf("second toggle = (%v, %v), want (false, true)", nowStarred, ok)
	}
	if len(s.StarredMessages()) != 0 {
		t.Errorf("starred collection has %d entries after unstar, want 0", len(s.StarredMessages()))
	}
	starInvariantHolds(t, s)
}

func TestToggleStarUnknownIDIsNoop(t *testing.T) {
	s := New(bus.New())
	s.SetMessages([]model.ChatMessage{msg("m1")})
	s.SetStarredMessages([]model.ChatMessage{})

	_, ok := s.ToggleMessageStar("unknown-id")
	if ok {
		t.Error("toggle of unknown id should report ok=false")
	}
	if len(s.Messages()) != 1 || s.Messages()[0].Starred {
		t.Error("messages changed by unknown-id toggle")
	}
	if len(s.StarredMessages()) != 0 {
		t.Error("starred collection changed by unknown-id toggle")
	}
}

func TestToggleStarReconcilesExistingEntry(t *testing.T) {
	s := New(bus.New())
	m := msg("m1")
	s.SetMessages([]model.ChatMessage{m})
	// Server refetch already listed m1 as starred, but the local copy has
	// not been flipped yet.
	s.SetStarredMessages([]model.ChatMessage{m})

	nowStarred, ok := s.ToggleMessageStar("m1")
	if !ok || !nowStarred {
		t.Fatalf("toggle = (%v, %v), want (true, true)", nowStarred, ok)
	}
	// Entry must be updated in place, not duplicated.
	if n := len(s.StarredMessages()); n != 1 {
		t.Errorf("starred collection has %d entries, want 1", n)
	}
	if !s.StarredMessages()[0].Starred {
		t.Error("starred entry should carry the flipped flag")
	}
}

func TestAddStarredMessageDedupesByID(t *testing.T) {
	s := New(bus.New())
	s.AddStarredMessage(msg("m1"))
	updated := msg("m1")
	updated.Content = "edited"
	s.AddStarredMessage(updated)

	starred := s.StarredMessages()
	if len(starred) != 1 {
		t.Fatalf("got %d starred entries, want 1", len(starred))
	}
	if starred[0].Content != "edited" {
		t.Errorf("entry should be replaced in place, got %q", starred[0].Content)
	}
}

func TestRemoveStarredMessageAbsentIsNoop(t *testing.T) {
	s := New(bus.New())
	s.AddStarredMessage(msg("m1"))
	s.RemoveStarredMessage("m2")
	if len(s.StarredMessages()) != 1 {
		t.Error("removing an absent id should not change the collection")
	}
}

func TestSetChatsPublishes(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe(EventChats, 4)
	defer unsub()

	s := New(b)
	s.SetChats([]model.Chat{{ChatPreview: model.ChatPreview{ID: "c1"}}})

	select {
	case evt := <-ch:
		chats, ok := evt.Payload.([]model.Chat)
		if !ok || len(chats) != 1 {
			t.Errorf("payload = %#v, want the replaced chat list", evt.Payload)
		}
	default:
		t.Fatal("SetChats should publish a state.chats event")
	}
}

func TestLastViewedMergeAndPublish(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe(EventLastViewed, 4)
	defer unsub()

	s := New(b)
	s.SetLastViewed("c1", "2026-01-02T10:00:00Z")
	s.SetLastViewed("c2", "2026-01-02T11:00:00Z")

	if ts, ok := s.LastViewed("c1"); !ok || ts != "2026-01-02T10:00:00Z" {
		t.Errorf("LastViewed(c1) = %q, %v", ts, ok)
	}
	if len(s.LastViewedMap()) != 2 {
		t.Error("merge should keep both entries")
	}

	<-ch
	select {
	case evt := <-ch:
		m, ok := evt.Payload.(map[string]string)
		if !ok || len(m) != 2 {
			t.Errorf("payload = %#v, want full map with 2 entries", evt.Payload)
		}
	default:
		t.Fatal("second SetLastViewed should publish")
	}
}

func TestUnreadCount(t *testing.T) {
	s := New(bus.New())
	old := msg("m1")
	old.CreatedAt = "2026-01-01T00:00:00Z"
	recent := msg("m2")
	recent.CreatedAt = "2026-01-03T00:00:00Z"
	s.SetChats([]model.Chat{{
		ChatPreview: model.ChatPreview{ID: "c1"},
		Messages:    []model.ChatMessage{old, recent},
	}})

	if got := s.UnreadCount("c1"); got != 2 {
		t.Errorf("UnreadCount with no last-viewed = %d, want 2", got)
	}

	s.SetLastViewed("c1", "2026-01-02T00:00:00Z")
	if got := s.UnreadCount("c1"); got != 1 {
		t.Errorf("UnreadCount = %d, want 1", got)
	}

	if got := s.UnreadCount("unknown"); got != 0 {
		t.Errorf("UnreadCount(unknown) = %d, want 0", got)
	}
}

func TestIntentTakeOnce(t *testing.T) {
	s := New(bus.New())
	s.SetIntent(&Intent{Target: model.ChatUser{ID: "u2"}, InitialMessage: "hi"})

	in := s.TakeIntent()
	if in == nil || in.Target.ID != "u2" {
		t.Fatalf("TakeIntent = %+v", in)
	}
	if s.TakeIntent() != nil {
		t.Error("intent should be consumed exactly once")
	}
}

func TestClearAll(t *testing.T) {
	s := New(bus.New())
	s.SetChats([]model.Chat{{ChatPreview: model.ChatPreview{ID: "c1"}}})
	s.SetMessages([]model.ChatMessage{msg("m1")})
	s.AddStarredMessage(msg("m1"))
	s.SetLastViewed("c1", "2026-01-02T10:00:00Z")
	s.SetCurrentChat(&model.Chat{ChatPreview: model.ChatPreview{ID: "c1"}})

	s.ClearAll()

	if s.CurrentChat() != nil || len(s.Chats()) != 0 || len(s.Messages()) != 0 ||
		len(s.StarredMessages()) != 0 || len(s.LastViewedMap()) != 0 {
		t.Error("ClearAll should wipe every slice")
	}
}
