// Package resolve finds or creates the direct chat between two users,
// with optional navigation and initial-message side effects.
//
// The operation is best-effort, not transactional: each step's outcome is
// recorded in a Result instead of being rolled back or rethrown, so a
// failed message send leaves the created chat (and any navigation)
// standing.
package resolve

import (
	"context"

	"github.com/vlourenco/cardlink/internal/api"
	"github.com/vlourenco/cardlink/internal/model"
	"github.com/vlourenco/cardlink/internal/state"
	"go.uber.org/zap"
)

// API is the slice of the backend client the resolver uses.
type API interface {
	GetUserProfile(ctx context.Context, userID string) (*model.ChatUser, error)
	GetUserChats(ctx context.Context, userID string) ([]model.Chat, error)
	CreateChat(ctx context.Context, req *api.CreateChatRequest) (*model.Chat, error)
	SendMessage(ctx context.Context, msg *model.ChatMessage) (*model.ChatMessage, error)
}

// Navigator is the routing side effect, implemented by the UI layer.
type Navigator interface {
	NavigateToChat(chat *model.Chat, target model.ChatUser)
}

// VCard is the optional virtual-business-card payload attached to the
// initial message.
type VCard struct {
	ID       string
	Name     string
	ImageURL string
}

// Request describes one resolution. The zero value of DisableRouting
// keeps routing enabled.
type Request struct {
	CurrentUser    model.ChatUser
	TargetUser     model.ChatUser
	DisableRouting bool
	InitialMessage string
	// MessageType defaults to TEXT when an initial message is set.
	MessageType string
	VCard       *VCard
}

// Service resolves direct chats idempotently: two calls for the same user
// pair find the same chat, creating it at most once.
type Service struct {
	api    API
	nav    Navigator
	store  *state.Store
	logger *zap.Logger
}

// NewService creates a resolution service. nav and store may be nil when
// no routing or local mirroring is wanted.
func NewService(a API, nav Navigator, st *state.Store, logger *zap.Logger) *Service {
	return &Service{api: a, nav: nav, store: st, logger: logger}
}

// Resolve runs the saga: Profile -> Lookup -> Create -> Navigate -> Send.
// It never returns an error; failures are logged and recorded per step.
func (s *Service) Resolve(ctx context.Context, req Request) *Result {
	res := &Result{
		Profile:  skipped(),
		Lookup:   skipped(),
		Create:   skipped(),
		Navigate: skipped(),
		Send:     skipped(),
	}

	target := req.TargetUser

	// Step 1: the create payload needs the target's email; fetch the full
	// profile when the caller's copy has none. Failure aborts everything.
	if target.Email == "" {
		profile, err := s.api.GetUserProfile(ctx, target.ID)
		if err != nil {
			res.Profile = failed(err)
			s.logger.Error("target profile fetch failed, aborting resolution",
				zap.String("target_id", target.ID), zap.Error(err))
			return res
		}
		target = *profile
		res.Profile = ok()
	}

	// Step 2: first non-group chat containing the target wins, in server
	// order. Duplicate direct chats are a data anomaly the server does
	// not prevent; they are logged, not resolved.
	chats, err := s.api.GetUserChats(ctx, req.CurrentUser.ID)
	if err != nil {
		res.Lookup = failed(err)
		s.logger.Error("chat lookup failed, aborting resolution",
			zap.String("user_id", req.CurrentUser.ID), zap.Error(err))
		return res
	}
	res.Lookup = ok()

	matches := 0
	for i := range chats {
		if chats[i].IsDirectWith(target.ID) {
			if res.Chat == nil {
				res.Chat = &chats[i]
			}
			matches++
		}
	}
	if matches > 1 {
		s.logger.Warn("multiple direct chats for the same pair, first match wins",
			zap.String("target_id", target.ID), zap.Int("matches", matches))
	}

	// Step 3: create when no match.
	if res.Chat == nil {
		chat, err := s.api.CreateChat(ctx, &api.CreateChatRequest{
			Users:   []model.ChatUser{req.CurrentUser, target},
			IsGroup: false,
		})
		if err != nil {
			res.Create = failed(err)
			s.logger.Error("chat creation failed, aborting resolution",
				zap.String("target_id", target.ID), zap.Error(err))
			return res
		}
		res.Chat = chat
		res.Created = true
		res.Create = ok()
	}

	// Step 4: navigation, when enabled. The target profile rides along as
	// a screen parameter.
	if !req.DisableRouting {
		if s.store != nil {
			s.store.SetCurrentChat(res.Chat)
		}
		if s.nav != nil {
			s.nav.NavigateToChat(res.Chat, target)
		}
		res.Navigate = ok()
	}

	// Step 5: optional initial message. A failure here is logged and
	// recorded but rolls nothing back.
	if req.InitialMessage != "" {
		msgType := req.MessageType
		if msgType == "" {
			msgType = model.MessageTypeText
		}
		msg := &model.ChatMessage{
			Content:     req.InitialMessage,
			MessageType: msgType,
			Sender:      req.CurrentUser,
			Chat:        res.Chat.ChatPreview,
		}
		if req.VCard != nil {
			msg.VCardID = req.VCard.ID
			msg.VCardName = req.VCard.Name
			msg.VCardImageURL = req.VCard.ImageURL
		}
		sent, err := s.api.SendMessage(ctx, msg)
		if err != nil {
			res.Send = failed(err)
			s.logger.Error("initial message send failed, chat stands",
				zap.String("chat_id", res.Chat.ID), zap.Error(err))
			return res
		}
		res.Send = ok()
		if s.store != nil {
			s.store.AddMessage(*sent)
		}
	}

	return res
}
