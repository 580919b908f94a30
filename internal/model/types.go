package model

// Message types as sent on the wire. The server accepts free-form strings;
// these are the ones the client produces.
const (
	MessageTypeText  = "TEXT"
	MessageTypeImage = "IMAGE"
	MessageTypeVideo = "VIDEO"
	MessageTypeFile  = "FILE"
	MessageTypeAudio = "AUDIO"
	MessageTypeVCard = "VCARD"
)

// ChatUser is an immutable reference to a chat participant. Identity is ID.
type ChatUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ChatPreview is the summary record used in chat lists and message payloads.
type ChatPreview struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsGroup   bool   `json:"isGroup"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Chat is a full chat with participants and messages.
//
// For non-group chats the server is assumed (not enforced) to hold exactly
// two participants and at most one chat per user pair.
type Chat struct {
	ChatPreview
	Participants []ChatUser    `json:"users"`
	Messages     []ChatMessage `json:"messages,omitempty"`
}

// HasParticipant reports whether the user with the given id is a member.
func (c *Chat) HasParticipant(userID string) bool {
	for _, u := range c.Participants {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// IsDirectWith reports whether this chat is the direct (non-group) chat
// containing the given user.
func (c *Chat) IsDirectWith(userID string) bool {
	return !c.IsGroup && c.HasParticipant(userID)
}

// ChatMessage is a single message. The embedded chat reference is a
// summary, never the full chat (the server would otherwise recurse).
type ChatMessage struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	MessageType string      `json:"messageType"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
	Sender      ChatUser    `json:"sender"`
	Chat        ChatPreview `json:"chat"`
	Media       []ChatMedia `json:"media,omitempty"`

	// Virtual business card payload, present when MessageType is VCARD.
	VCardID       string `json:"vbcId,omitempty"`
	VCardName     string `json:"vbcName,omitempty"`
	VCardImageURL string `json:"vbcImageUrl,omitempty"`

	// Starred is a client-visible bookmark flag mirrored to the server.
	Starred bool `json:"starred,omitempty"`
}

// ChatMedia is an attachment on a message; it is never created on its own.
type ChatMedia struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"`
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
	FileName  string `json:"fileName,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}
