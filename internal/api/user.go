package api

import (
	"context"
	"net/http"

	"github.com/vlourenco/cardlink/internal/model"
)

// GetUserProfile fetches a user's full profile. Chat resolution needs this
// when a target profile arrives without an email.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*model.ChatUser, error) {
	var user model.ChatUser
	if err := c.doJSON(ctx, "get_user", http.MethodGet, "/api/user/"+userID, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
