// Package app wires the filestore bot: storage, settings, menus and the link generator.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/filestore-bot/bot/config"
	"github.com/m3rciful/filestore-bot/bot/generator"
	"github.com/m3rciful/filestore-bot/bot/menu"
	"github.com/m3rciful/filestore-bot/bot/settings"
	"github.com/m3rciful/filestore-bot/core/bootstrap"
	"github.com/m3rciful/filestore-bot/core/buildinfo"
	"github.com/m3rciful/filestore-bot/core/errtrack"
	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/metrics"
	coretelegram "github.com/m3rciful/filestore-bot/core/telegram"
	"github.com/m3rciful/filestore-bot/core/telegram/middleware"
	"github.com/m3rciful/filestore-bot/core/telegram/prompt"
	"github.com/m3rciful/filestore-bot/core/telegram/router"
	"github.com/m3rciful/filestore-bot/migrations"

	tele "gopkg.in/telebot.v4"
)

// App holds the wired components of a running bot.
type App struct {
	cfg     *config.Config
	infra   *bootstrap.Result
	store   *settings.Store
	prompts *prompt.Manager
	menu    *menu.Controller
	gen     *generator.Generator
	tracker errtrack.Tracker
}

// Bootstrap initializes logging, storage and the error tracker, then wires the bot.
func Bootstrap(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	infra, err := bootstrap.Run(bootstrap.Options{
		Config:       &cfg.Config,
		Database:     cfg.Database,
		SkipDatabase: cfg.Storage.Driver != config.StorageSQL,
		Migrations:   migrations.FS,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := newBackend(ctx, cfg, infra.DB)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	tracker, err := errtrack.New(cfg.Sentry.DSN, cfg.Sentry.Environment, buildinfo.Version)
	if err != nil {
		_ = backend.Close()
		_ = infra.Close()
		return nil, err
	}

	middleware.SetPanicReporter(func(ctx context.Context, err error) {
		tracker.CaptureError(ctx, err, map[string]string{"kind": "panic"})
	})

	a := New(cfg, backend, tracker)
	a.infra = infra
	if err := a.Seed(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// New wires the bot over an already opened backend.
func New(cfg *config.Config, backend settings.Backend, tracker errtrack.Tracker) *App {
	if tracker == nil {
		tracker = errtrack.Noop{}
	}
	store := settings.NewStore(backend, settings.Options{
		StartText:      cfg.Bot.StartText,
		ForceText:      cfg.Bot.ForceText,
		DatabaseChatID: cfg.Bot.DatabaseChatID,
		CacheSize:      cfg.Storage.CacheSize,
		CacheTTL:       cfg.Storage.CacheTTL(),
	})
	prompts := prompt.NewManager()
	ctrl := menu.NewController(store, prompts, menu.Options{
		OwnerID: cfg.Telegram.OwnerID,
		Timeout: cfg.Bot.PromptTimeout(),
		Tracker: tracker,
	})
	gen := generator.New(generator.Options{
		Store:        store,
		Prompts:      prompts,
		Authorize:    ctrl.Authorized,
		CaptionDelay: cfg.Bot.CaptionDelay(),
		Tracker:      tracker,
	})
	return &App{
		cfg:     cfg,
		store:   store,
		prompts: prompts,
		menu:    ctrl,
		gen:     gen,
		tracker: tracker,
	}
}

// Seed adds the configured initial admins and force-subscribe chats.
func (a *App) Seed(ctx context.Context) error {
	return bootstrap.RunSeeders(ctx, a.store, settings.ListSeeder(map[settings.Name][]int64{
		settings.Admins:    a.cfg.Bot.InitialAdmins,
		settings.FsubChats: a.cfg.Bot.InitialFsubChats,
	}))
}

// Close releases storage and flushes pending error reports.
func (a *App) Close() error {
	a.tracker.Flush(2 * time.Second)
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.infra != nil {
		errs = append(errs, a.infra.Close())
	}
	return errors.Join(errs...)
}

// TelegramRunOptions registers menus, commands and message routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.menu.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.gen.Handle)

	admin := middleware.AdminOptions{
		OwnerID:   a.cfg.Telegram.OwnerID,
		Authorize: a.menu.Authorized,
	}
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{Admin: admin})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.MessageRoutes(a.prompts, reg, router.MessageOptions{Media: a.gen.Handle})...)

	onLimited := func(c tele.Context) error {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Slow down a little."})
		}
		return nil
	}

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, onLimited),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	if rt.Bot != nil && rt.Bot.Me != nil {
		a.gen.SetBotUsername(rt.Bot.Me.Username)
	}
	if listen := a.cfg.Metrics.Listen; listen != "" {
		go func() {
			if err := metrics.Serve(ctx, listen, a.cfg.Metrics.Path); err != nil {
				logger.Error(ctx, "app", "metrics.serve",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			}
		}()
	}
	logger.SVCSettings.Info("settings store ready",
		slog.String("event", "startup"),
		slog.String("driver", a.cfg.Storage.Driver),
		slog.Int64("db", a.store.DefaultDatabaseChat()),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, rt coretelegram.Runtime) error {
	if n := a.prompts.Len(); n > 0 {
		logger.SVCPrompt.Info("dropping waiting prompts",
			slog.String("event", "shutdown"),
			slog.Int("waiting", n),
		)
	}
	if rt.Dispatcher != nil {
		if n := rt.Dispatcher.ErrorCount(); n > 0 {
			logger.TG.Warn("outbound messages dropped",
				slog.String("event", "shutdown"),
				slog.Uint64("count", n),
			)
		}
	}
	return a.Close()
}

func newBackend(ctx context.Context, cfg *config.Config, db *sqlx.DB) (settings.Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageSQL:
		if db == nil {
			return nil, fmt.Errorf("app: sql storage without a database handle")
		}
		return settings.NewSQLBackend(db), nil
	case config.StorageRedis:
		b, err := settings.NewRedisBackend(ctx, settings.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.StorageMemory:
		return settings.NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("app: unknown storage driver %q", cfg.Storage.Driver)
}
