package daemon

import (
	"context"

	"github.com/vlourenco/cardlink/internal/api"
	"github.com/vlourenco/cardlink/internal/bus"
	"github.com/vlourenco/cardlink/internal/config"
	"github.com/vlourenco/cardlink/internal/lock"
	"github.com/vlourenco/cardlink/internal/logging"
	"github.com/vlourenco/cardlink/internal/observability"
	"github.com/vlourenco/cardlink/internal/resolve"
	"github.com/vlourenco/cardlink/internal/session"
	"github.com/vlourenco/cardlink/internal/state"
	"github.com/vlourenco/cardlink/internal/status"
	"github.com/vlourenco/cardlink/internal/store"
	intsync "github.com/vlourenco/cardlink/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved session configuration passed to the fx module.
type Params struct {
	SessionName string
	DebugAddr   string // optional override for testing; empty = use config
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideStateMachine,
			provideLock,
			provideCacheDB,
			provideAPIClient,
			provideStateStore,
			provideEngine,
			providePoller,
			provideResolver,
			provideDebugServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(session.LogPath(p.SessionName), p.SessionName)
}

func provideConfig(logger *zap.Logger) *config.Config {
	cfg, err := config.Load(session.ConfigPath())
	if err != nil {
		logger.Info("no config file, using defaults", zap.Error(err))
		return config.Default()
	}
	return cfg
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired")
	return l, nil
}

func provideCacheDB(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.CachePath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("cache initialized", zap.String("path", dbPath))
	return db, nil
}

func provideAPIClient(cfg *config.Config, logger *zap.Logger) *api.Client {
	return api.NewClient(cfg.API.BaseURL, cfg.HTTPTimeout(), logger)
}

func provideStateStore(b *bus.Bus) *state.Store {
	return state.New(b)
}

func provideEngine(db *store.DB, b *bus.Bus, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(db, b, logger)
}

func providePoller(db *store.DB, client *api.Client, st *state.Store, m *status.Machine, cfg *config.Config, logger *zap.Logger) (*intsync.Poller, error) {
	creds, err := db.LoadCredentials()
	if err != nil {
		return nil, err
	}
	if creds == nil || creds.Token == "" || creds.UserID == "" {
		// No identity yet; the lifecycle hook parks in AUTH_REQUIRED.
		return nil, nil
	}
	client.SetToken(creds.Token)
	return intsync.NewPoller(client, st, m, creds.UserID, intsync.Intervals{
		ChatList: cfg.ChatListInterval(),
		Messages: cfg.MessagesInterval(),
		Starred:  cfg.StarredInterval(),
	}, logger), nil
}

func provideResolver(client *api.Client, st *state.Store, logger *zap.Logger) *resolve.Service {
	// The daemon has no routing surface; consumers that do can wrap the
	// service with their own Navigator.
	return resolve.NewService(client, nil, st, logger)
}

func provideDebugServer(p Params, cfg *config.Config, st *state.Store, m *status.Machine, b *bus.Bus, logger *zap.Logger) *observability.Server {
	addr := p.DebugAddr
	if addr == "" {
		addr = cfg.Debug.ListenAddr
	}
	snapshot := func() map[string]any {
		return map[string]any{
			"session":     p.SessionName,
			"status":      m.Current(),
			"chats":       len(st.Chats()),
			"messages":    len(st.Messages()),
			"starred":     len(st.StarredMessages()),
			"subscribers": b.SubscriberCount(),
		}
	}
	return observability.NewServer(addr, snapshot, logger)
}

func registerLifecycle(lc fx.Lifecycle, db *store.DB, engine *intsync.Engine, poller *intsync.Poller, st *state.Store, machine *status.Machine, debug *observability.Server, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Persist state.* slices to the cache DB.
			engine.Start(context.Background())

			// Serve cached data before the first poll lands.
			if err := engine.Warm(st); err != nil {
				logger.Warn("cache warm failed, starting cold", zap.Error(err))
			}

			go func() {
				if err := debug.Start(); err != nil {
					logger.Error("debug server error", zap.Error(err))
				}
			}()

			if poller != nil {
				_ = machine.Transition(status.Syncing)
				poller.Start(context.Background())
			} else {
				logger.Info("no stored credentials, sync disabled")
				_ = machine.Transition(status.AuthRequired)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if poller != nil {
				poller.Stop()
			}
			engine.Stop()
			debug.Stop(ctx)
			_ = db.Close()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
