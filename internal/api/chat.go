package api

import (
	"context"
	"net/http"

	"github.com/vlourenco/cardlink/internal/model"
)

// CreateChatRequest is the payload for chat creation. Direct chats carry
// exactly two users and no name.
type CreateChatRequest struct {
	Users   []model.ChatUser `json:"users"`
	IsGroup bool             `json:"isGroup"`
	Name    string           `json:"name,omitempty"`
}

// CreateChat creates a chat and returns the server's record of it.
func (c *Client) CreateChat(ctx context.Context, req *CreateChatRequest) (*model.Chat, error) {
	var chat model.Chat
	if err := c.doJSON(ctx, "create_chat", http.MethodPost, "/api/chat/create", req, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChat fetches a single chat by id, including its participants and
// messages.
func (c *Client) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	var chat model.Chat
	if err := c.doJSON(ctx, "get_chat", http.MethodGet, "/api/chat/"+chatID, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetUserChats fetches every chat the user participates in, in server order.
func (c *Client) GetUserChats(ctx context.Context, userID string) ([]model.Chat, error) {
	var chats []model.Chat
	if err := c.doJSON(ctx, "get_user_chats", http.MethodGet, "/api/chat/user/"+userID, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// AddUserToChat adds a participant and returns the updated chat.
func (c *Client) AddUserToChat(ctx context.Context, chatID, userID string) (*model.Chat, error) {
	var chat model.Chat
	if err := c.doJSON(ctx, "add_user", http.MethodPut, "/api/chat/"+chatID+"/users/"+userID, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// RemoveUserFromChat removes a participant and returns the updated chat.
func (c *Client) RemoveUserFromChat(ctx context.Context, chatID, userID string) (*model.Chat, error) {
	var chat model.Chat
	if err := c.doJSON(ctx, "remove_user", http.MethodDelete, "/api/chat/"+chatID+"/users/"+userID, nil, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}
