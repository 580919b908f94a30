package api

import (
	"context"
	"net/http"

	"github.com/vlourenco/cardlink/internal/model"
)

// SendMessage posts a message and returns the server's record of it.
func (c *Client) SendMessage(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	var sent model.ChatMessage
	if err := c.doJSON(ctx, "send_message", http.MethodPost, "/api/chat/send", msg, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

// SendMediaMessage posts a message carrying media attachments. The media
// must already be uploaded; the message only references its URLs.
func (c *Client) SendMediaMessage(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error) {
	var sent model.ChatMessage
	if err := c.doJSON(ctx, "send_media", http.MethodPost, "/api/chat/send/media", msg, &sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

// GetChatMessages fetches a chat's messages. The backend has no dedicated
// message-list endpoint; this reuses the chat-by-id path and unwraps the
// message array.
func (c *Client) GetChatMessages(ctx context.Context, chatID string) ([]model.ChatMessage, error) {
	chat, err := c.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return chat.Messages, nil
}

// DeleteMessage deletes a message server-side.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.doJSON(ctx, "delete_message", http.MethodDelete, "/api/chat/"+messageID, nil, nil)
}

// StarMessage marks a message as starred and returns the updated message.
func (c *Client) StarMessage(ctx context.Context, messageID string) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	if err := c.doJSON(ctx, "star_message", http.MethodPut, "/api/chat/message/"+messageID+"/star", nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// UnstarMessage removes the star from a message.
func (c *Client) UnstarMessage(ctx context.Context, messageID string) error {
	return c.doJSON(ctx, "unstar_message", http.MethodDelete, "/api/chat/message/"+messageID+"/star", nil, nil)
}

// GetStarredMessages fetches the user's starred messages across all chats.
func (c *Client) GetStarredMessages(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	if err := c.doJSON(ctx, "get_starred", http.MethodGet, "/api/chat/starred/"+userID, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
