package router

import (
	"log/slog"

	"github.com/m3rciful/filestore-bot/core/logger"
	tg "github.com/m3rciful/filestore-bot/core/telegram"
	"github.com/m3rciful/filestore-bot/core/telegram/middleware"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	Admin middleware.AdminOptions
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Aliases get their own route bound to the same handler.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for cmd, def := range cmds {
		h := def.Handler
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(opts.Admin)(h)
		}
		for _, ep := range def.Endpoints(cmd) {
			routes = append(routes, tg.Route{Endpoint: ep, Handler: h})
		}
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(cmds)),
		slog.Int("routes", len(routes)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
