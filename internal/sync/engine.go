package sync

import (
	"context"
	"fmt"

	"github.com/vlourenco/cardlink/internal/bus"
	"github.com/vlourenco/cardlink/internal/model"
	"github.com/vlourenco/cardlink/internal/state"
	"github.com/vlourenco/cardlink/internal/store"
	"go.uber.org/zap"
)

// Engine writes durable slices through to the local cache DB. It
// subscribes to "state." events on the bus: the chat list and the
// last-viewed map survive restarts, everything else is rebuilt by polling.
type Engine struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a write-through engine.
func NewEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *Engine {
	return &Engine{
		db:     db,
		bus:    b,
		logger: logger,
	}
}

// Warm loads the cached chat list and last-viewed map into the state
// store, so consumers have data before the first poll completes (and
// offline).
func (e *Engine) Warm(st *state.Store) error {
	lastViewed, err := e.db.LoadLastViewed()
	if err != nil {
		return fmt.Errorf("load last viewed: %w", err)
	}
	st.LoadLastViewed(lastViewed)

	chats, err := e.db.LoadChatList()
	if err != nil {
		return fmt.Errorf("load chat list: %w", err)
	}
	if chats != nil {
		st.SetChats(chats)
	}
	e.logger.Info("state warmed from cache",
		zap.Int("chats", len(chats)),
		zap.Int("last_viewed_entries", len(lastViewed)))
	return nil
}

// Start subscribes to state events on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	ch, unsub := e.bus.Subscribe("state.", 256)

	go func() {
		defer close(e.done)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine and waits for the event loop to exit.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

func (e *Engine) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case state.EventChats:
		chats, ok := evt.Payload.([]model.Chat)
		if !ok {
			return
		}
		if err := e.db.SaveChatList(chats); err != nil {
			e.logger.Error("failed to persist chat list", zap.Error(err), zap.Int("count", len(chats)))
		}
	case state.EventLastViewed:
		m, ok := evt.Payload.(map[string]string)
		if !ok {
			return
		}
		if err := e.db.SaveLastViewed(m); err != nil {
			e.logger.Error("failed to persist last viewed map", zap.Error(err), zap.Int("entries", len(m)))
		}
	}
}
