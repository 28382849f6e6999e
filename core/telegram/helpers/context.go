package helpers

import (
	"context"

	"github.com/m3rciful/filestore-bot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	ctxSlot     = "logger_ctx"
	sessionSlot = "prompt_session"
)

// StoreContext keeps ctx on c so later handlers for the same update reuse it.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxSlot, ctx)
	}
}

// ContextFrom returns the context stored by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxSlot).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the update's log context: rid, update/user/chat ids
// and, once a prompt claimed the update, its session id.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}

	ctx := logger.WithUpdateMeta(logger.WithRID(context.Background(), rid), updateID, userID, chatID)
	if id, _ := c.Get(sessionSlot).(string); id != "" {
		ctx = logger.WithSession(ctx, id)
	}
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the update's context with the serving handler.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	StoreContext(c, ctx)
	return ctx
}

// WithSession tags the update's context with the prompt session that
// consumed it.
func WithSession(c tele.Context, sessionID string) context.Context {
	if sessionID == "" {
		return BuildContext(c)
	}
	c.Set(sessionSlot, sessionID)
	ctx := logger.WithSession(BuildContext(c), sessionID)
	StoreContext(c, ctx)
	return ctx
}

// SessionFrom returns the prompt session id recorded by WithSession.
func SessionFrom(c tele.Context) string {
	id, _ := c.Get(sessionSlot).(string)
	return id
}
