package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/telegram/callbacks"
	"github.com/m3rciful/filestore-bot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and callback actions. Callback keys are stored
// in their canonical "<verb> <object>" form.
type Registry struct {
	mu               sync.RWMutex
	commands         map[string]commands.Command
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry. Unknown callbacks are answered
// silently so the client stops its spinner.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			_ = c.Respond()
			return nil
		},
	}
}

// RegisterCommand adds a slash command. Invalid or duplicate names are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	reason := ""
	switch {
	case !cmd.Valid():
		reason = "invalid"
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		reason = "no_slash_prefix"
	}
	if reason != "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("status", "skip"),
			slog.String("name", name),
			slog.String("cause", reason),
		)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("status", "skip"),
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// LookupCommand resolves name or one of its aliases to the canonical command.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = "/" + strings.TrimPrefix(name, "/")

	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		if slices.Contains(cmd.Endpoints(key), name) {
			return key, cmd, true
		}
	}
	return "", commands.Command{}, false
}

// Commands returns a copy of the registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// BotCommands returns the command menu entries, sorted. Admin-only commands
// are included only when admin is true; hidden commands never are.
func (r *Registry) BotCommands(admin bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]tele.Command, 0, len(r.commands))
	for name, meta := range r.commands {
		if meta.Hidden || (meta.AdminOnly && !admin) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback binds an action identifier to handler. The key is
// normalized, so "toggle  generate" and "toggle generate" collide.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	action, ok := callbacks.ParseAction(key)
	if !ok || handler == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.skip",
			slog.String("status", "skip"),
			slog.String("cb_key", key),
			slog.Bool("handler_nil", handler == nil),
		)
		return fmt.Errorf("invalid callback registration %q", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[action.Key()]; exists {
		return fmt.Errorf("callback already registered: %s", action.Key())
	}
	r.callbacks[action.Key()] = handler
	return nil
}

// GetCallback returns the handler bound to key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	action, ok := callbacks.ParseAction(key)
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[action.Key()]
	return h, ok
}

// ListCallbacks returns the sorted callback keys.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the handler for unknown callback actions.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.callbackNotFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the handler for unknown callback actions.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbackNotFound
}

// SetTextFallback sets the handler for messages no command or prompt claimed.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.mu.Lock()
	r.textFallback = h
	r.mu.Unlock()
}

// TextFallback returns the handler for unclaimed messages, or nil.
func (r *Registry) TextFallback() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textFallback
}

// CommandSetter is the part of *tele.Bot that publishes the command menu.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands publishes the public command menu and, when ownerID is set,
// a menu including admin commands scoped to the owner's private chat.
func InitBotCommands(bot CommandSetter, reg *Registry, ownerID int64) {
	publish := func(scope string, opts ...interface{}) {
		if err := bot.SetCommands(opts...); err != nil {
			logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands",
				slog.String("status", "fail"),
				slog.String("kind", scope),
				slog.String("err", err.Error()),
			)
		}
	}

	publish("default", reg.BotCommands(false))
	if ownerID != 0 {
		publish("owner", reg.BotCommands(true), tele.CommandScope{Type: tele.CommandScopeChat, ChatID: ownerID})
	}
}
