package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vlourenco/cardlink/internal/model"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 0, zap.NewNop())
}

func TestCreateChatPostsTwoUserPayload(t *testing.T) {
	var got CreateChatRequest
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat/create" {
			t.Errorf("request = %s %s, want POST /api/chat/create", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		_ = json.NewEncoder(w).Encode(model.Chat{
			ChatPreview:  model.ChatPreview{ID: "c1"},
			Participants: got.Users,
		})
	}))

	chat, err := c.CreateChat(context.Background(), &CreateChatRequest{
		Users: []model.ChatUser{{ID: "u1"}, {ID: "u2"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if chat.ID != "c1" {
		t.Errorf("chat id = %q, want c1", chat.ID)
	}
	if len(got.Users) != 2 || got.IsGroup {
		t.Errorf("payload = %+v, want two users, isGroup=false", got)
	}
}

func TestGetUserChatsPath(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/user/u1" {
			t.Errorf("path = %q, want /api/chat/user/u1", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]model.Chat{{ChatPreview: model.ChatPreview{ID: "c1"}}})
	}))

	chats, err := c.GetUserChats(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 {
		t.Fatalf("got %d chats, want 1", len(chats))
	}
}

func TestBearerTokenAttached(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q, want Bearer tok-123", got)
		}
		_ = json.NewEncoder(w).Encode(model.Chat{})
	}))
	c.SetToken("tok-123")

	if _, err := c.GetChat(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := c.GetChat(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.StatusCode)
	}
}

func TestGetChatMessagesUnwrapsChat(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/c1" {
			t.Errorf("path = %q, want /api/chat/c1", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(model.Chat{
			ChatPreview: model.ChatPreview{ID: "c1"},
			Messages:    []model.ChatMessage{{ID: "m1"}, {ID: "m2"}},
		})
	}))

	msgs, err := c.GetChatMessages(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
}

func TestDeleteMessagePath(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/chat/m1" {
			t.Errorf("request = %s %s, want DELETE /api/chat/m1", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := c.DeleteMessage(context.Background(), "m1"); err != nil {
		t.Fatal(err)
	}
}

func TestParticipantPaths(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/c1/users/u3" {
			t.Errorf("path = %q, want /api/chat/c1/users/u3", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPut, http.MethodDelete:
			_ = json.NewEncoder(w).Encode(model.Chat{ChatPreview: model.ChatPreview{ID: "c1"}})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))

	if _, err := c.AddUserToChat(context.Background(), "c1", "u3"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RemoveUserFromChat(context.Background(), "c1", "u3"); err != nil {
		t.Fatal(err)
	}
}

func TestSendMediaMessagePath(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat/send/media" {
			t.Errorf("request = %s %s, want POST /api/chat/send/media", r.Method, r.URL.Path)
		}
		var msg model.ChatMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Fatal(err)
		}
		if len(msg.Media) != 1 || msg.Media[0].URL == "" {
			t.Errorf("media payload = %+v, want one uploaded attachment", msg.Media)
		}
		msg.ID = "m1"
		_ = json.NewEncoder(w).Encode(msg)
	}))

	sent, err := c.SendMediaMessage(context.Background(), &model.ChatMessage{
		MessageType: model.MessageTypeImage,
		Media:       []model.ChatMedia{{URL: "https://cdn/img.png", MediaType: "IMAGE"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sent.ID != "m1" {
		t.Errorf("sent id = %q, want m1", sent.ID)
	}
}

func TestGetStarredAndProfilePaths(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat/starred/u1":
			_ = json.NewEncoder(w).Encode([]model.ChatMessage{{ID: "m1", Starred: true}})
		case "/api/user/u2":
			_ = json.NewEncoder(w).Encode(model.ChatUser{ID: "u2", Email: "bob@example.com"})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	starred, err := c.GetStarredMessages(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(starred) != 1 {
		t.Fatalf("got %d starred, want 1", len(starred))
	}

	user, err := c.GetUserProfile(context.Background(), "u2")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "bob@example.com" {
		t.Errorf("email = %q", user.Email)
	}
}

func TestStarUnstarPaths(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/message/m1/star" {
			t.Errorf("path = %q, want /api/chat/message/m1/star", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPut:
			_ = json.NewEncoder(w).Encode(model.ChatMessage{ID: "m1", Starred: true})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))

	msg, err := c.StarMessage(context.Background(), "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !msg.Starred {
		t.Error("starred message should come back with starred=true")
	}
	if err := c.UnstarMessage(context.Background(), "m1"); err != nil {
		t.Fatal(err)
	}
}
