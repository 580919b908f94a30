// Package sync keeps the in-memory chat state eventually consistent with
// the backend. There is no push transport; a Poller refetches each tracked
// resource on a fixed interval and replaces the store slice wholesale,
// while an Engine writes select slices through to the local cache DB.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vlourenco/cardlink/internal/model"
	"github.com/vlourenco/cardlink/internal/observability"
	"github.com/vlourenco/cardlink/internal/state"
	"github.com/vlourenco/cardlink/internal/status"
	"go.uber.org/zap"
)

// Source is the slice of the API client the poller reads from.
type Source interface {
	GetUserChats(ctx context.Context, userID string) ([]model.Chat, error)
	GetChatMessages(ctx context.Context, chatID string) ([]model.ChatMessage, error)
	GetStarredMessages(ctx context.Context, userID string) ([]model.ChatMessage, error)
}

// Intervals holds the per-resource refetch periods.
type Intervals struct {
	ChatList time.Duration
	Messages time.Duration
	Starred  time.Duration
}

// Poller refetches the chat list, the current chat's messages, and the
// starred collection on fixed timers.
//
// Ticks are not gated on in-flight fetches: a tick that fires while the
// previous request is still outstanding issues a new one, so responses can
// arrive and apply out of order. Last write wins on each slice, and a
// stale response can overwrite a newer local mutation.
type Poller struct {
	src       Source
	store     *state.Store
	machine   *status.Machine
	logger    *zap.Logger
	userID    string
	intervals Intervals

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller for the given user.
func NewPoller(src Source, st *state.Store, m *status.Machine, userID string, iv Intervals, logger *zap.Logger) *Poller {
	return &Poller{
		src:       src,
		store:     st,
		machine:   m,
		logger:    logger,
		userID:    userID,
		intervals: iv,
	}
}

// Start launches the per-resource loops. Each loop fetches immediately,
// then on its timer, until the context is canceled.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(3)
	go p.loop(ctx, "chat_list", p.intervals.ChatList, p.fetchChatList)
	go p.loop(ctx, "messages", p.intervals.Messages, p.fetchMessages)
	go p.loop(ctx, "starred", p.intervals.Starred, p.fetchStarred)
}

// Stop cancels the loops and waits for them to exit. In-flight requests
// are abandoned, not awaited.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context, resource string, interval time.Duration, fetch func(context.Context, string)) {
	defer p.wg.Done()
	p.logger.Info("poll loop started",
		zap.String("resource", resource),
		zap.Duration("interval", interval))

	go fetch(ctx, uuid.NewString())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			go fetch(ctx, uuid.NewString())
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) fetchChatList(ctx context.Context, runID string) {
	chats, err := p.src.GetUserChats(ctx, p.userID)
	if err != nil {
		p.fail(ctx, "chat_list", runID, err)
		return
	}
	p.store.SetChats(chats)
	p.ok("chat_list")
}

func (p *Poller) fetchMessages(ctx context.Context, runID string) {
	current := p.store.CurrentChat()
	if current == nil {
		return
	}
	msgs, err := p.src.GetChatMessages(ctx, current.ID)
	if err != nil {
		p.fail(ctx, "messages", runID, err)
		return
	}
	p.store.SetMessages(msgs)
	p.ok("messages")
}

func (p *Poller) fetchStarred(ctx context.Context, runID string) {
	msgs, err := p.src.GetStarredMessages(ctx, p.userID)
	if err != nil {
		p.fail(ctx, "starred", runID, err)
		return
	}
	p.store.SetStarredMessages(msgs)
	p.ok("starred")
}

func (p *Poller) ok(resource string) {
	observability.ObservePollCycle(resource, "ok")
	if p.machine != nil {
		_ = p.machine.Transition(status.Ready)
	}
}

// fail logs and records the error; there is no retry budget, no backoff
// and nothing surfaces to the consumer beyond the Degraded status.
func (p *Poller) fail(ctx context.Context, resource, runID string, err error) {
	if ctx.Err() != nil {
		return
	}
	observability.ObservePollCycle(resource, "error")
	p.logger.Error("poll failed",
		zap.String("resource", resource),
		zap.String("run_id", runID),
		zap.Error(err))
	if p.machine != nil {
		_ = p.machine.Transition(status.Degraded)
	}
}
